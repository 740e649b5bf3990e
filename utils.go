package vmssops

import (
	"os"
	"strings"
)

// GetEnvValueStrict fetches value for env variable "key". Returns error if
// not found or empty
func GetEnvValueStrict(key string) (string, error) {
	if val := os.Getenv(key); len(val) != 0 {
		return strings.TrimSpace(val), nil
	}

	return "", &ErrEnvNotSet{Key: key}
}

// IsBlank returns true if s is empty or only contains whitespace.
func IsBlank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
