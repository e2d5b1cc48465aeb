// Package rest composes the request URLs, query strings and XML bodies of
// the S3 REST subset the client speaks.
package rest

import (
	"strconv"
	"strings"
)

// ObjectURL builds endpoint/bucket/key with exactly one slash between
// segments; one trailing slash on the endpoint is elided. The key is
// deliberately not percent-encoded.
func ObjectURL(endpoint, bucket, key string) string {
	var b strings.Builder
	b.Grow(len(endpoint) + 1 + len(bucket) + 1 + len(key))
	b.WriteString(strings.TrimSuffix(endpoint, "/"))
	b.WriteByte('/')
	b.WriteString(bucket)
	if key != "" {
		b.WriteByte('/')
		b.WriteString(key)
	}
	return b.String()
}

// BucketURL builds endpoint/bucket.
func BucketURL(endpoint, bucket string) string {
	return ObjectURL(endpoint, bucket, "")
}

// ListURL builds the ListObjectsV2 URL: always list-type=2, then prefix,
// max-keys and continuation-token in that order when present. Prefix and
// token are percent-encoded over the RFC 3986 unreserved set.
func ListURL(endpoint, bucket, prefix string, maxKeys int32, token string) string {
	var b strings.Builder
	b.WriteString(BucketURL(endpoint, bucket))
	b.WriteString("?list-type=2")
	if prefix != "" {
		b.WriteString("&prefix=")
		b.WriteString(EncodeQuery(prefix))
	}
	if maxKeys > 0 {
		b.WriteString("&max-keys=")
		b.WriteString(strconv.FormatInt(int64(maxKeys), 10))
	}
	if token != "" {
		b.WriteString("&continuation-token=")
		b.WriteString(EncodeQuery(token))
	}
	return b.String()
}

// DeleteURL builds the Multi-Object Delete URL: endpoint/bucket?delete.
func DeleteURL(endpoint, bucket string) string {
	return BucketURL(endpoint, bucket) + "?delete"
}

const upperhex = "0123456789ABCDEF"

// EncodeQuery percent-encodes s for use in a query value. The RFC 3986
// unreserved set (ALPHA / DIGIT / "-" / "." / "_" / "~") passes through;
// every other byte becomes %HH with uppercase hex.
func EncodeQuery(s string) string {
	encoded := 0
	for i := 0; i < len(s); i++ {
		if !isUnreserved(s[i]) {
			encoded++
		}
	}
	if encoded == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*encoded)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xF])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
