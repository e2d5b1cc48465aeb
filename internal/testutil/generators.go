package testutil

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RandomBucketName returns a DNS-compliant bucket name with the given
// prefix, unique per call.
func RandomBucketName(prefix string) string {
	if prefix == "" {
		prefix = "s3c-test"
	}
	name := prefix + "-" + uuid.NewString()
	name = strings.ToLower(name)
	if len(name) > 63 {
		name = name[:63]
	}
	return strings.Trim(name, "-.")
}

// RandomKey returns a unique object key under the given prefix.
func RandomKey(prefix string) string {
	return prefix + uuid.NewString()
}

// Payload returns n deterministic bytes; the pattern makes off-by-one
// corruption visible in diffs.
func Payload(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte('a' + (i % 26))
	}
	return out
}

// NumberedKeys returns keys o1..oN, matching the naming of the pagination
// scenarios.
func NumberedKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("o%d", i+1)
	}
	return keys
}
