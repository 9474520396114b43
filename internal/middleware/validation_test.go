package middleware

import (
	"strings"
	"testing"
)

func TestValidateVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"with dash and underscore", "a-b_c123", "a-b_c123", false},
		{"trims whitespace", "  abc123  ", "abc123", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"too long", strings.Repeat("a", 33), "", true},
		{"invalid characters", "abc 123!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateVideoID(tt.input)
			if (errMsg != "") != tt.wantErr {
				t.Errorf("error = %q, wantErr %v", errMsg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid hex", "deadbeef01", "deadbeef01", false},
		{"uppercase normalized", "DEADBEEF", "deadbeef", false},
		{"empty", "", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
		{"non-hex", "not-a-hash!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateUserID(tt.input)
			if (errMsg != "") != tt.wantErr {
				t.Errorf("error = %q, wantErr %v", errMsg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateUUID(t *testing.T) {
	valid := strings.Repeat("ab", 32)
	if got, errMsg := ValidateUUID(valid); errMsg != "" || got != valid {
		t.Errorf("64-char hex UUID rejected: %q", errMsg)
	}
	if _, errMsg := ValidateUUID(""); errMsg == "" {
		t.Error("empty UUID accepted")
	}
	if _, errMsg := ValidateUUID(strings.Repeat("a", 65)); errMsg == "" {
		t.Error("oversized UUID accepted")
	}
	if _, errMsg := ValidateUUID("xyz"); errMsg == "" {
		t.Error("non-hex UUID accepted")
	}
}

func TestValidateHashPrefix(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"abcd", false},
		{"abcdef01", false},
		{"ABCD", false}, // normalized to lowercase
		{"abc", true},   // too short
		{"abcdef012", true},
		{"ghij", true}, // not hex
		{"", true},
	}

	for _, tt := range tests {
		_, errMsg := ValidateHashPrefix(tt.input)
		if (errMsg != "") != tt.wantErr {
			t.Errorf("ValidateHashPrefix(%q) error = %q, wantErr %v", tt.input, errMsg, tt.wantErr)
		}
	}
}
