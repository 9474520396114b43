package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// VideoHashPrefix returns the first prefixLen characters of SHA256(videoID).
// Used for privacy-preserving segment lookups (k-anonymity).
func VideoHashPrefix(videoID string, prefixLen int) string {
	full := SHA256Hex(videoID)
	if prefixLen > len(full) {
		return full
	}
	return full[:prefixLen]
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// HashIP hashes a network address with a salt using 5000 iterations of SHA256.
// Voter identity and address live in distinct hash spaces.
func HashIP(ip, salt string) string {
	return IteratedSHA256(salt+ip, 5000)
}

// Fingerprint computes the deterministic identifier for a segment from its
// defining tuple. Identical inputs always produce the same identifier; this
// is the sole mechanism for duplicate detection and idempotent re-submission.
func Fingerprint(videoID, category, userID string, startTime, endTime float64) string {
	parts := []string{
		videoID,
		category,
		userID,
		strconv.FormatFloat(startTime, 'f', -1, 64),
		strconv.FormatFloat(endTime, 'f', -1, 64),
	}
	return SHA256Hex(strings.Join(parts, "|"))
}
