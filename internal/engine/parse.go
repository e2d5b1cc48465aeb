package engine

import (
	"encoding/xml"
	"strings"
	"time"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/s3types"
)

// xmlListBucketResult mirrors the ListObjectsV2 <ListBucketResult> schema.
// IsTruncated is decoded as text so "true"/"True" both booleanise.
type xmlListBucketResult struct {
	XMLName               xml.Name      `xml:"ListBucketResult"`
	IsTruncated           string        `xml:"IsTruncated"`
	NextContinuationToken string        `xml:"NextContinuationToken"`
	KeyCount              int           `xml:"KeyCount"`
	Contents              []xmlContents `xml:"Contents"`
}

type xmlContents struct {
	Key          string `xml:"Key"`
	Size         int64  `xml:"Size"`
	ETag         string `xml:"ETag"`
	LastModified string `xml:"LastModified"`
	StorageClass string `xml:"StorageClass"`
}

// parseListResult extracts the object records and pagination state from a
// ListObjectsV2 response. Missing tags leave their fields zero; an empty
// response yields an empty result.
func parseListResult(data []byte) (*s3types.ListObjectsResult, *s3cerrors.Error) {
	result := &s3types.ListObjectsResult{}
	if len(data) == 0 {
		return result, nil
	}

	var parsed xmlListBucketResult
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, s3cerrors.New("list_objects", s3cerrors.HTTP, err).
			WithMessage("malformed ListObjectsV2 response: " + err.Error())
	}

	result.IsTruncated = parsed.IsTruncated == "true" || parsed.IsTruncated == "True"
	result.NextContinuationToken = parsed.NextContinuationToken
	result.KeyCount = parsed.KeyCount

	result.Objects = make([]s3types.ObjectInfo, 0, len(parsed.Contents))
	for _, c := range parsed.Contents {
		info := s3types.ObjectInfo{
			Key:          c.Key,
			Size:         c.Size,
			ETag:         stripQuotes(c.ETag),
			StorageClass: c.StorageClass,
		}
		if c.LastModified != "" {
			if ts, err := time.Parse(time.RFC3339, c.LastModified); err == nil {
				info.LastModified = ts
			}
		}
		result.Objects = append(result.Objects, info)
	}
	if result.KeyCount == 0 {
		result.KeyCount = len(result.Objects)
	}
	return result, nil
}

// stripQuotes removes one pair of surrounding double quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

type xmlDeleteResult struct {
	XMLName xml.Name `xml:"DeleteResult"`
	Deleted []struct {
		Key       string `xml:"Key"`
		VersionID string `xml:"VersionId"`
	} `xml:"Deleted"`
	Errors []struct {
		Key       string `xml:"Key"`
		VersionID string `xml:"VersionId"`
		Code      string `xml:"Code"`
		Message   string `xml:"Message"`
	} `xml:"Error"`
}

// parseDeleteResult extracts the per-object outcomes of a Multi-Object
// Delete response. In quiet mode the server omits Deleted entries.
func parseDeleteResult(data []byte) (*s3types.DeleteResult, *s3cerrors.Error) {
	result := &s3types.DeleteResult{}
	if len(data) == 0 {
		return result, nil
	}

	var parsed xmlDeleteResult
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, s3cerrors.New("delete_objects", s3cerrors.HTTP, err).
			WithMessage("malformed DeleteResult response: " + err.Error())
	}

	for _, d := range parsed.Deleted {
		result.Deleted = append(result.Deleted, s3types.DeletedObject{
			Key:       d.Key,
			VersionID: d.VersionID,
		})
	}
	for _, e := range parsed.Errors {
		result.Errors = append(result.Errors, s3types.DeleteError{
			Key:       e.Key,
			VersionID: e.VersionID,
			Code:      e.Code,
			Message:   e.Message,
		})
	}
	return result, nil
}
