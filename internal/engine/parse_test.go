package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>firstbucket</Name>
  <KeyCount>2</KeyCount>
  <IsTruncated>true</IsTruncated>
  <NextContinuationToken>token-abc</NextContinuationToken>
  <Contents>
    <Key>hello.txt</Key>
    <LastModified>2024-03-01T12:00:00.000Z</LastModified>
    <ETag>&quot;9a0364b9e99bb480dd25e1f0284c8555&quot;</ETag>
    <Size>22</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <Contents>
    <Key>nested/data.bin</Key>
    <LastModified>2024-03-02T08:30:00.000Z</LastModified>
    <ETag>&quot;0cc175b9c0f1b6a831c399e269772661&quot;</ETag>
    <Size>1048576</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
</ListBucketResult>`

func TestParseListResult(t *testing.T) {
	result, err := parseListResult([]byte(sampleListResponse))
	require.Nil(t, err)

	assert.True(t, result.IsTruncated)
	assert.Equal(t, "token-abc", result.NextContinuationToken)
	assert.Equal(t, 2, result.KeyCount)
	require.Len(t, result.Objects, 2)

	first := result.Objects[0]
	assert.Equal(t, "hello.txt", first.Key)
	assert.Equal(t, int64(22), first.Size)
	assert.Equal(t, "9a0364b9e99bb480dd25e1f0284c8555", first.ETag,
		"surrounding quotes must be stripped")
	assert.Equal(t,
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		first.LastModified.UTC())
	assert.Equal(t, "STANDARD", first.StorageClass)

	assert.Equal(t, int64(1048576), result.Objects[1].Size)
}

func TestParseListResultCountMatchesContents(t *testing.T) {
	for _, n := range []int{0, 1, 16, 17, 100} {
		var b strings.Builder
		b.WriteString("<ListBucketResult><IsTruncated>false</IsTruncated>")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "<Contents><Key>k%d</Key><Size>%d</Size></Contents>", i, i)
		}
		b.WriteString("</ListBucketResult>")

		result, err := parseListResult([]byte(b.String()))
		require.Nil(t, err)
		assert.Len(t, result.Objects, n)
	}
}

func TestParseListResultBooleanise(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"True", true},
		{"false", false},
		{"False", false},
		{"", false},
	}
	for _, tt := range tests {
		xml := "<ListBucketResult><IsTruncated>" + tt.raw +
			"</IsTruncated></ListBucketResult>"
		result, err := parseListResult([]byte(xml))
		require.Nil(t, err)
		assert.Equal(t, tt.want, result.IsTruncated, "raw %q", tt.raw)
	}
}

func TestParseListResultMissingTags(t *testing.T) {
	xml := "<ListBucketResult><Contents><Key>only-key</Key></Contents></ListBucketResult>"
	result, err := parseListResult([]byte(xml))
	require.Nil(t, err)
	require.Len(t, result.Objects, 1)

	obj := result.Objects[0]
	assert.Equal(t, "only-key", obj.Key)
	assert.Zero(t, obj.Size)
	assert.Empty(t, obj.ETag)
	assert.True(t, obj.LastModified.IsZero())
	assert.Empty(t, obj.StorageClass)
	assert.Equal(t, 1, result.KeyCount)
}

func TestParseListResultEmptyInput(t *testing.T) {
	result, err := parseListResult(nil)
	require.Nil(t, err)
	assert.Empty(t, result.Objects)
	assert.False(t, result.IsTruncated)
}

func TestParseListResultUnquotedETag(t *testing.T) {
	xml := "<ListBucketResult><Contents><Key>k</Key><ETag>bare</ETag></Contents></ListBucketResult>"
	result, err := parseListResult([]byte(xml))
	require.Nil(t, err)
	assert.Equal(t, "bare", result.Objects[0].ETag)
}

func TestParseDeleteResult(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Deleted><Key>o1</Key></Deleted>
  <Deleted><Key>o2</Key><VersionId>v7</VersionId></Deleted>
  <Error><Key>locked</Key><Code>AccessDenied</Code><Message>nope</Message></Error>
</DeleteResult>`

	result, err := parseDeleteResult([]byte(xml))
	require.Nil(t, err)
	require.Len(t, result.Deleted, 2)
	assert.Equal(t, "o2", result.Deleted[1].Key)
	assert.Equal(t, "v7", result.Deleted[1].VersionID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "AccessDenied", result.Errors[0].Code)
	assert.Equal(t, "nope", result.Errors[0].Message)
}

func TestParseDeleteResultQuietEmpty(t *testing.T) {
	result, err := parseDeleteResult([]byte("<DeleteResult></DeleteResult>"))
	require.Nil(t, err)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Errors)
}
