// Package testutil provides test doubles and harnesses for exercising the
// client without a real object store: an in-memory S3 server speaking the
// REST subset the client uses, plus data generators and a LocalStack
// container harness for integration tests.
package testutil

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// S3Server is an in-memory S3-compatible server for unit tests. It stores
// objects in maps, serves ListObjectsV2 with real pagination, and verifies
// the Content-MD5 of Multi-Object Delete bodies.
type S3Server struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte

	srv *httptest.Server

	// authStatus, when non-zero, rejects every request with that status.
	authStatus int

	lastHeaders http.Header
}

// NewS3Server starts a fresh in-memory server; it is shut down with the
// test.
func NewS3Server(t *testing.T) *S3Server {
	t.Helper()
	s := &S3Server{buckets: make(map[string]map[string][]byte)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the server endpoint.
func (s *S3Server) URL() string { return s.srv.URL }

// SetAuthStatus makes every subsequent request fail with the given status;
// 0 restores normal operation.
func (s *S3Server) SetAuthStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authStatus = code
}

// LastRequestHeaders returns a copy of the headers of the most recent
// request.
func (s *S3Server) LastRequestHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeaders.Clone()
}

// PutObjectDirect seeds an object without going through HTTP.
func (s *S3Server) PutObjectDirect(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string][]byte)
	}
	s.buckets[bucket][key] = append([]byte(nil), data...)
}

// Object returns a stored object.
func (s *S3Server) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.buckets[bucket][key]
	return data, ok
}

// ObjectCount returns the number of objects in a bucket.
func (s *S3Server) ObjectCount(bucket string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets[bucket])
}

func (s *S3Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.lastHeaders = r.Header.Clone()
	reject := s.authStatus
	s.mu.Unlock()

	if reject != 0 {
		writeS3Error(w, reject, "AccessDenied", "access denied by test policy")
		return
	}

	bucket, key := splitPath(r.URL.Path)
	if bucket == "" {
		writeS3Error(w, http.StatusBadRequest, "InvalidRequest", "missing bucket")
		return
	}

	switch {
	case r.Method == http.MethodPut && key == "":
		s.createBucket(w, bucket)
	case r.Method == http.MethodPut:
		s.putObject(w, r, bucket, key)
	case r.Method == http.MethodGet && key == "" && r.URL.Query().Get("list-type") == "2":
		s.listObjects(w, r, bucket)
	case r.Method == http.MethodGet && key != "":
		s.getObject(w, r, bucket, key)
	case r.Method == http.MethodPost && key == "" && hasQueryFlag(r, "delete"):
		s.deleteObjects(w, r, bucket)
	default:
		writeS3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed",
			"unsupported operation")
	}
}

func splitPath(p string) (bucket, key string) {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], p[i+1:]
	}
	return p, ""
}

func hasQueryFlag(r *http.Request, flag string) bool {
	_, ok := r.URL.Query()[flag]
	return ok
}

func (s *S3Server) createBucket(w http.ResponseWriter, bucket string) {
	s.mu.Lock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string][]byte)
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *S3Server) putObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeS3Error(w, http.StatusBadRequest, "IncompleteBody", err.Error())
		return
	}

	s.mu.Lock()
	objects, ok := s.buckets[bucket]
	if ok {
		objects[key] = data
	}
	s.mu.Unlock()
	if !ok {
		writeS3Error(w, http.StatusNotFound, "NoSuchBucket", "bucket does not exist")
		return
	}

	sum := md5.Sum(data)
	w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
	w.WriteHeader(http.StatusOK)
}

func (s *S3Server) getObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	s.mu.Lock()
	data, ok := s.buckets[bucket][key]
	s.mu.Unlock()
	if !ok {
		writeS3Error(w, http.StatusNotFound, "NoSuchKey", "object does not exist")
		return
	}

	if rng := r.Header.Get("Range"); rng != "" {
		if from, to, ok := parseRange(rng, int64(len(data))); ok {
			w.Header().Set("Content-Range",
				fmt.Sprintf("bytes %d-%d/%d", from, to, len(data)))
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write(data[from : to+1])
			return
		}
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseRange(spec string, size int64) (from, to int64, ok bool) {
	spec = strings.TrimPrefix(spec, "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	from, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || from < 0 || from >= size {
		return 0, 0, false
	}
	to = size - 1
	if parts[1] != "" {
		to, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil || to < from {
			return 0, 0, false
		}
		if to >= size {
			to = size - 1
		}
	}
	return from, to, true
}

func (s *S3Server) listObjects(w http.ResponseWriter, r *http.Request, bucket string) {
	q := r.URL.Query()
	prefix := q.Get("prefix")
	token := q.Get("continuation-token")
	maxKeys := 1000
	if mk := q.Get("max-keys"); mk != "" {
		if n, err := strconv.Atoi(mk); err == nil && n > 0 {
			maxKeys = n
		}
	}

	s.mu.Lock()
	objects, ok := s.buckets[bucket]
	if !ok {
		s.mu.Unlock()
		writeS3Error(w, http.StatusNotFound, "NoSuchBucket", "bucket does not exist")
		return
	}
	keys := make([]string, 0, len(objects))
	for k := range objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sizes := make(map[string]int, len(keys))
	sums := make(map[string]string, len(keys))
	for _, k := range keys {
		sizes[k] = len(objects[k])
		sum := md5.Sum(objects[k])
		sums[k] = hex.EncodeToString(sum[:])
	}
	s.mu.Unlock()

	sort.Strings(keys)
	start := 0
	if token != "" {
		after := decodeToken(token)
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}

	end := start + maxKeys
	truncated := false
	if end < len(keys) {
		truncated = true
	} else {
		end = len(keys)
	}
	page := keys[start:end]

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, "<Name>%s</Name>", bucket)
	fmt.Fprintf(&b, "<KeyCount>%d</KeyCount>", len(page))
	fmt.Fprintf(&b, "<IsTruncated>%t</IsTruncated>", truncated)
	if truncated && len(page) > 0 {
		fmt.Fprintf(&b, "<NextContinuationToken>%s</NextContinuationToken>",
			encodeToken(page[len(page)-1]))
	}
	for _, k := range page {
		b.WriteString("<Contents>")
		fmt.Fprintf(&b, "<Key>%s</Key>", xmlEscape(k))
		fmt.Fprintf(&b, "<Size>%d</Size>", sizes[k])
		fmt.Fprintf(&b, "<ETag>&quot;%s&quot;</ETag>", sums[k])
		fmt.Fprintf(&b, "<LastModified>%s</LastModified>",
			time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
		b.WriteString("<StorageClass>STANDARD</StorageClass>")
		b.WriteString("</Contents>")
	}
	b.WriteString("</ListBucketResult>")

	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, b.String())
}

// Continuation tokens are opaque to clients; base64 keeps tests honest
// about not interpreting them.
func encodeToken(key string) string {
	return base64.URLEncoding.EncodeToString([]byte(key))
}

func decodeToken(token string) string {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return token
	}
	return string(raw)
}

type deleteRequest struct {
	XMLName xml.Name `xml:"Delete"`
	Quiet   bool     `xml:"Quiet"`
	Objects []struct {
		Key       string `xml:"Key"`
		VersionID string `xml:"VersionId"`
	} `xml:"Object"`
}

func (s *S3Server) deleteObjects(w http.ResponseWriter, r *http.Request, bucket string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeS3Error(w, http.StatusBadRequest, "IncompleteBody", err.Error())
		return
	}

	sum := md5.Sum(body)
	wantMD5 := base64.StdEncoding.EncodeToString(sum[:])
	if got := r.Header.Get("Content-MD5"); got != wantMD5 {
		writeS3Error(w, http.StatusBadRequest, "InvalidDigest",
			"Content-MD5 does not match body")
		return
	}

	var req deleteRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		writeS3Error(w, http.StatusBadRequest, "MalformedXML", err.Error())
		return
	}

	s.mu.Lock()
	objects := s.buckets[bucket]
	for _, obj := range req.Objects {
		delete(objects, obj.Key)
	}
	s.mu.Unlock()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	if !req.Quiet {
		for _, obj := range req.Objects {
			fmt.Fprintf(&b, "<Deleted><Key>%s</Key></Deleted>", xmlEscape(obj.Key))
		}
	}
	b.WriteString("</DeleteResult>")

	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, b.String())
}

func writeS3Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w,
		`<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`,
		code, xmlEscape(message))
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
