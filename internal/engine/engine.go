// Package engine implements the HTTP request-execution core: it builds one
// fully-wired transaction per S3 operation and executes it through one of
// two interchangeable backends. The serial backend runs a transaction on the
// calling goroutine; the multiplexed backend owns a dedicated driver
// goroutine servicing a pending/running queue and is safe for concurrent
// submitters.
package engine

import (
	"context"
	"io"
	"time"

	"pkt.systems/pslog"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/s3types"
)

// Config carries everything the engine needs from the client: endpoint,
// credentials, auth mode, timeouts, pool limits and TLS settings. All fields
// are immutable once the backend is constructed.
type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	SessionToken  string
	DefaultBucket string

	RequireSigV4 bool

	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	IdlePoll       time.Duration

	MaxConns        int
	MaxConnsPerHost int

	CAFile             string
	CAPath             string
	Proxy              string
	InsecureSkipVerify bool

	Logger pslog.Base
}

// PutInput parameterizes an upload from a positional reader.
type PutInput struct {
	Bucket      string
	Key         string
	Src         io.ReaderAt
	Off         int64
	Size        int64
	ContentType string
}

// GetInput parameterizes a download into a positional writer. MaxSize 0
// means uncapped.
type GetInput struct {
	Bucket  string
	Key     string
	Dst     io.WriterAt
	Off     int64
	MaxSize int64
	Range   string
}

// DeleteInput parameterizes a Multi-Object Delete.
type DeleteInput struct {
	Bucket  string
	Objects []s3types.ObjectIdentifier
	Quiet   bool
}

// Backend executes S3 transactions. Every method is synchronous: it returns
// only after the transaction completed or failed. The backend must outlive
// every in-flight request it created; Close drains in-flight work before
// returning.
type Backend interface {
	Put(ctx context.Context, in *PutInput) (*s3types.PutResult, *s3cerrors.Error)
	Get(ctx context.Context, in *GetInput) (*s3types.GetResult, *s3cerrors.Error)
	CreateBucket(ctx context.Context, bucket string) *s3cerrors.Error
	List(ctx context.Context, in *s3types.ListObjectsInput) (*s3types.ListObjectsResult, *s3cerrors.Error)
	Delete(ctx context.Context, in *DeleteInput) (*s3types.DeleteResult, *s3cerrors.Error)
	Close() error
}

// New constructs the backend selected by kind.
func New(kind s3types.BackendKind, cfg *Config) (Backend, *s3cerrors.Error) {
	switch kind {
	case s3types.BackendSerial:
		b, err := newSerial(cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	case s3types.BackendMultiplexed:
		b, err := newMultiplexed(cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, s3cerrors.Newf("client_new", s3cerrors.InvalidArg,
			"unknown backend kind %d", int(kind))
	}
}
