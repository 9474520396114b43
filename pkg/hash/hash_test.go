package hash

import (
	"strings"
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex("")
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestVideoHashPrefix(t *testing.T) {
	full := SHA256Hex("dQw4w9WgXcQ")
	if got := VideoHashPrefix("dQw4w9WgXcQ", 4); got != full[:4] {
		t.Errorf("prefix = %s, want %s", got, full[:4])
	}
	if got := VideoHashPrefix("dQw4w9WgXcQ", 100); got != full {
		t.Errorf("oversized prefix length should return the full hash, got %s", got)
	}
}

func TestIteratedSHA256(t *testing.T) {
	once := IteratedSHA256("input", 1)
	if once != SHA256Hex("input") {
		t.Errorf("one iteration must equal a plain hash")
	}
	twice := IteratedSHA256("input", 2)
	if twice == once {
		t.Error("iteration count must change the output")
	}
}

func TestHashIPSaltSeparation(t *testing.T) {
	a := HashIP("203.0.113.9", "salt-a")
	b := HashIP("203.0.113.9", "salt-b")
	if a == b {
		t.Error("different salts must produce different address hashes")
	}
	if a != HashIP("203.0.113.9", "salt-a") {
		t.Error("address hashing must be deterministic")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("abc12345678", "sponsor", "abcdef", 10, 20)
	b := Fingerprint("abc12345678", "sponsor", "abcdef", 10, 20)
	if a != b {
		t.Errorf("identical tuples diverged: %s vs %s", a, b)
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Errorf("fingerprint should be 64 lowercase hex chars, got %q", a)
	}
}

func TestFingerprintDivergesPerField(t *testing.T) {
	base := Fingerprint("abc12345678", "sponsor", "abcdef", 10, 20)
	variants := map[string]string{
		"videoID":  Fingerprint("xyz12345678", "sponsor", "abcdef", 10, 20),
		"category": Fingerprint("abc12345678", "intro", "abcdef", 10, 20),
		"userID":   Fingerprint("abc12345678", "sponsor", "fedcba", 10, 20),
		"start":    Fingerprint("abc12345678", "sponsor", "abcdef", 10.5, 20),
		"end":      Fingerprint("abc12345678", "sponsor", "abcdef", 10, 20.5),
	}
	for field, fp := range variants {
		if fp == base {
			t.Errorf("changing %s did not change the fingerprint", field)
		}
	}
}

func TestFingerprintFractionalTimes(t *testing.T) {
	// Sub-second boundaries must round-trip through the same formatting.
	a := Fingerprint("abc12345678", "sponsor", "abcdef", 10.123456, 20.654321)
	b := Fingerprint("abc12345678", "sponsor", "abcdef", 10.123456, 20.654321)
	if a != b {
		t.Error("fractional times must fingerprint deterministically")
	}
}
