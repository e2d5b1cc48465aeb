// Package validation provides centralized input validation logic.
// All user inputs are checked before a transaction is built so that invalid
// arguments never reach the wire.
package validation

import (
	"strings"
	"unicode"

	"github.com/objcore/s3c/errors"
)

// ValidateBucketName validates that a bucket name is DNS-compliant according
// to S3 rules.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return errors.Newf("validate_bucket", errors.InvalidArg,
			"bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.Newf("validate_bucket", errors.InvalidArg,
			"bucket name must be between 3 and 63 characters long").WithBucket(bucket)
	}
	for i := 0; i < len(bucket); i++ {
		c := bucket[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '.' {
			continue
		}
		return errors.Newf("validate_bucket", errors.InvalidArg,
			"bucket name contains invalid character %q", c).WithBucket(bucket)
	}
	if bucket[0] == '-' || bucket[0] == '.' ||
		bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return errors.Newf("validate_bucket", errors.InvalidArg,
			"bucket name must start and end with a letter or digit").WithBucket(bucket)
	}
	if strings.Contains(bucket, "..") {
		return errors.Newf("validate_bucket", errors.InvalidArg,
			"bucket name cannot contain consecutive periods").WithBucket(bucket)
	}
	return nil
}

// ValidateObjectKey validates an object key: non-empty, within the 1024-byte
// S3 limit and free of control characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.Newf("validate_key", errors.InvalidArg,
			"object key cannot be empty")
	}
	if len(key) > 1024 {
		return errors.Newf("validate_key", errors.InvalidArg,
			"object key cannot exceed 1024 bytes").WithKey(key[:64] + "...")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return errors.Newf("validate_key", errors.InvalidArg,
				"object key cannot contain control characters")
		}
	}
	return nil
}
