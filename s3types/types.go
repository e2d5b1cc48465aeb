// Package s3types provides shared type definitions for the s3c module.
package s3types

import (
	"time"

	"pkt.systems/pslog"

	"github.com/objcore/s3c/runner"
)

// BackendKind selects the HTTP execution backend.
type BackendKind int

// Available backends.
const (
	// BackendSerial executes one transaction at a time on the calling
	// goroutine. Callers must serialize access externally.
	BackendSerial BackendKind = iota

	// BackendMultiplexed runs a dedicated driver goroutine servicing a
	// pending/running queue; safe for concurrent submitters.
	BackendMultiplexed
)

// String returns the backend name.
func (k BackendKind) String() string {
	switch k {
	case BackendSerial:
		return "serial"
	case BackendMultiplexed:
		return "multiplexed"
	default:
		return "unknown"
	}
}

// Default resource limits and timeouts applied by the client.
const (
	DefaultConnectTimeout  = 5 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultIdlePoll        = 50 * time.Millisecond
	DefaultMaxConns        = 64
	DefaultMaxConnsPerHost = 16
)

// ClientConfig holds the configuration assembled by functional options.
type ClientConfig struct {
	// Endpoint is the base URL of the object store, e.g.
	// "https://s3.eu-west-1.amazonaws.com" or "http://127.0.0.1:9000".
	Endpoint string

	// Region is the signing region; required when RequireSigV4 is set.
	Region string

	// AccessKey and SecretKey authenticate every request.
	AccessKey string
	SecretKey string

	// SessionToken, when non-empty, is sent as x-amz-security-token.
	SessionToken string

	// DefaultBucket is used by operations that pass an empty bucket.
	DefaultBucket string

	// Backend selects the execution backend. Default is BackendSerial.
	Backend BackendKind

	// RequireSigV4 selects AWS Signature Version 4 over HTTP Basic auth.
	RequireSigV4 bool

	// ConnectTimeout bounds connection establishment per transaction.
	ConnectTimeout time.Duration

	// RequestTimeout bounds a whole transaction.
	RequestTimeout time.Duration

	// IdlePoll is the multiplexed driver's poll interval while requests
	// are in flight.
	IdlePoll time.Duration

	// MaxConns caps the idle connections kept pooled across all hosts; open
	// connections are bounded only per host, by MaxConnsPerHost.
	MaxConns int

	// MaxConnsPerHost caps connections per host.
	MaxConnsPerHost int

	// CAFile and CAPath add trusted roots for TLS verification.
	CAFile string
	CAPath string

	// Proxy, when non-empty, routes all transactions through the given
	// proxy URL.
	Proxy string

	// InsecureSkipVerify disables TLS peer and hostname verification.
	InsecureSkipVerify bool

	// Logger receives client diagnostics. Defaults to pslog.NoopLogger().
	Logger pslog.Base

	// Runner bridges the blocking operations onto a host-owned worker.
	// Defaults to runner.Direct.
	Runner runner.BlockingRunner
}

// Option configures the client.
type Option func(*ClientConfig)

// ObjectInfo describes one object in a listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string // surrounding quotes stripped
	LastModified time.Time
	StorageClass string
}

// ListObjectsInput parameterizes a ListObjectsV2 call.
type ListObjectsInput struct {
	// Bucket to list; empty falls back to the client default bucket.
	Bucket string

	// Prefix limits the listing to keys beginning with it.
	Prefix string

	// MaxKeys caps the number of keys per page; 0 leaves the server
	// default in place.
	MaxKeys int32

	// ContinuationToken resumes a truncated listing.
	ContinuationToken string
}

// ListObjectsResult is one page of a listing.
type ListObjectsResult struct {
	Objects               []ObjectInfo
	IsTruncated           bool
	NextContinuationToken string
	KeyCount              int
}

// ObjectIdentifier names one object in a batch delete.
type ObjectIdentifier struct {
	Key       string
	VersionID string
}

// DeletedObject is one successfully deleted entry in a DeleteResult.
type DeletedObject struct {
	Key       string
	VersionID string
}

// DeleteError is one per-object failure in a DeleteResult.
type DeleteError struct {
	Key       string
	VersionID string
	Code      string
	Message   string
}

// DeleteResult reports the outcome of a Multi-Object Delete. In quiet mode
// the server omits Deleted entries.
type DeleteResult struct {
	Deleted []DeletedObject
	Errors  []DeleteError
}

// PutResult reports a completed upload.
type PutResult struct {
	// ETag as returned by the server, quotes stripped.
	ETag string

	// BytesSent is the number of body bytes transmitted.
	BytesSent int64

	// Duration is the wall-clock time of the transaction.
	Duration time.Duration
}

// GetResult reports a completed download.
type GetResult struct {
	// BytesWritten is the number of body bytes written to the sink.
	BytesWritten int64

	// ContentLength is the server-reported Content-Length of the response
	// body (the range length for a ranged download), -1 if unknown.
	ContentLength int64

	// Duration is the wall-clock time of the transaction.
	Duration time.Duration
}

// PutOptionConfig holds per-upload options.
type PutOptionConfig struct {
	// ContentType sets the Content-Type header. When empty and
	// DetectContentType is set, the type is sniffed from the leading
	// bytes of the source.
	ContentType string

	// DetectContentType enables content sniffing when ContentType is
	// empty.
	DetectContentType bool
}

// PutOption configures a single upload.
type PutOption func(*PutOptionConfig)

// GetOptionConfig holds per-download options.
type GetOptionConfig struct {
	// Range is passed through as the Range header, e.g. "bytes=0-99".
	Range string
}

// GetOption configures a single download.
type GetOption func(*GetOptionConfig)

// DeleteOptionConfig holds per-batch-delete options.
type DeleteOptionConfig struct {
	// Quiet asks the server to omit per-object success entries.
	Quiet bool
}

// DeleteOption configures a single batch delete.
type DeleteOption func(*DeleteOptionConfig)
