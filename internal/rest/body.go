package rest

import (
	"crypto/md5"
	"encoding/base64"
	"strings"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/s3types"
)

// DeleteBody builds the Multi-Object Delete XML request body. Object keys
// and version ids are XML-escaped. An empty key fails validation before any
// output is produced.
func DeleteBody(objects []s3types.ObjectIdentifier, quiet bool) ([]byte, *s3cerrors.Error) {
	if len(objects) == 0 {
		return nil, s3cerrors.Newf("delete_objects", s3cerrors.InvalidArg,
			"no objects to delete")
	}
	for _, obj := range objects {
		if obj.Key == "" {
			return nil, s3cerrors.Newf("delete_objects", s3cerrors.InvalidArg,
				"object key is empty")
		}
	}

	var b strings.Builder
	b.WriteString("<Delete xmlns=\"http://s3.amazonaws.com/doc/2006-03-01/\">\n")
	if quiet {
		b.WriteString("  <Quiet>true</Quiet>\n")
	}
	for _, obj := range objects {
		b.WriteString("  <Object>\n    <Key>")
		writeXMLEscaped(&b, obj.Key)
		b.WriteString("</Key>\n")
		if obj.VersionID != "" {
			b.WriteString("    <VersionId>")
			writeXMLEscaped(&b, obj.VersionID)
			b.WriteString("</VersionId>\n")
		}
		b.WriteString("  </Object>\n")
	}
	b.WriteString("</Delete>")
	return []byte(b.String()), nil
}

// writeXMLEscaped appends s with &, <, > and " replaced by their entities.
func writeXMLEscaped(b *strings.Builder, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		var ent string
		switch s[i] {
		case '&':
			ent = "&amp;"
		case '<':
			ent = "&lt;"
		case '>':
			ent = "&gt;"
		case '"':
			ent = "&quot;"
		default:
			continue
		}
		b.WriteString(s[start:i])
		b.WriteString(ent)
		start = i + 1
	}
	b.WriteString(s[start:])
}

// ContentMD5 returns the Content-MD5 header value for body: the standard
// base64 encoding (padded, no line wraps) of its MD5 digest.
func ContentMD5(body []byte) string {
	sum := md5.Sum(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}
