package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxVideoIDLen = 32 // segments.video_id VARCHAR(32)
	MaxUserIDLen  = 64 // segments.user_id VARCHAR(64)
	MaxUUIDLen    = 64 // segments.uuid VARCHAR(64)
	MinHashPrefix = 4
	MaxHashPrefix = 8
)

var (
	// videoIDRe matches video IDs: alphanumeric, dash, underscore.
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// hexRe matches lowercase hex strings (hash prefixes, user IDs, UUIDs).
	hexRe = regexp.MustCompile(`^[0-9a-f]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoID checks that a video ID is well-formed and within DB limits.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoID is required"
	}
	if len(id) > MaxVideoIDLen {
		return "", "videoID must be at most 32 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "videoID contains invalid characters"
	}
	return id, ""
}

// ValidateUserID checks that a user ID is a valid hex hash.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "userID is required"
	}
	if len(id) > MaxUserIDLen {
		return "", "userID must be at most 64 characters"
	}
	if !hexRe.MatchString(id) {
		return "", "userID must be a hexadecimal hash"
	}
	return id, ""
}

// ValidateUUID checks a segment identifier.
func ValidateUUID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "UUID is required"
	}
	if len(id) > MaxUUIDLen {
		return "", "UUID must be at most 64 characters"
	}
	if !hexRe.MatchString(id) {
		return "", "UUID must be a hexadecimal hash"
	}
	return id, ""
}

// ValidateHashPrefix checks the k-anonymity hash prefix format.
func ValidateHashPrefix(prefix string) (string, string) {
	prefix = strings.TrimSpace(strings.ToLower(prefix))
	if len(prefix) < MinHashPrefix || len(prefix) > MaxHashPrefix {
		return "", "Hash prefix must be 4-8 characters"
	}
	if !hexRe.MatchString(prefix) {
		return "", "Hash prefix must be hexadecimal"
	}
	return prefix, ""
}
