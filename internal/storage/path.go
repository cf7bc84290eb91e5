package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/timmy/retweets/internal/domain"
)

var s3PathPattern = regexp.MustCompile(`^s3://([\w._-]+)/([\w./_-]+)$`)

// ParseS3Path splits "s3://bucket/key" into bucket and key.
// Anything else yields ErrInvalidInput.
func ParseS3Path(path string) (bucket, key string, err error) {
	m := s3PathPattern.FindStringSubmatch(path)
	if m == nil {
		return "", "", fmt.Errorf("malformed s3 path %q: %w", path, domain.ErrInvalidInput)
	}
	return m[1], m[2], nil
}

// IsS3Path reports whether path uses the s3:// scheme.
func IsS3Path(path string) bool {
	return strings.HasPrefix(path, "s3://")
}
