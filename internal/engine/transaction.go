package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"pkt.systems/pslog"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/pool"
)

// Transaction is one fully-wired HTTP exchange: target URL, headers, a body
// source, a response sink and the authentication parameters. Transactions
// are built fresh per operation by the factory functions and touched by
// exactly one goroutine at a time.
type Transaction struct {
	Op     string
	Method string
	URL    string
	Header http.Header

	// ContentLength is the request body size; 0 together with a nil
	// Source means no body.
	ContentLength int64

	// Source streams the request body; nil means no body.
	Source *BodySource

	// Sink receives the response body; never nil.
	Sink *BodySink

	// RespBuf is the owned response buffer backing a mem sink, retained
	// after execution so callers can parse or log the body.
	RespBuf *pool.Buffer

	// PayloadHash is the SigV4 content hash of the request body.
	PayloadHash string

	Auth AuthParams

	// Bucket and Key annotate errors.
	Bucket string
	Key    string
}

// txResult carries the response metadata the operations need.
type txResult struct {
	Status        int
	ETag          string
	ContentLength int64
}

// executor owns the per-client HTTP stack and runs one transaction at a
// time per calling goroutine.
type executor struct {
	cfg    *Config
	httpc  *http.Client
	bufs   *pool.BufferPool
	signer *v4.Signer
	logger pslog.Base
}

func newExecutor(cfg *Config) (*executor, *s3cerrors.Error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, s3cerrors.Newf("client_new", s3cerrors.InvalidArg,
			"access key and secret key must be set")
	}

	tr, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}

	return &executor{
		cfg: cfg,
		httpc: &http.Client{
			Transport: tr,
			// S3 redirects carry state we must not replay blindly;
			// surface them as HTTP errors instead.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		bufs:   pool.NewBufferPool(),
		signer: v4.NewSigner(),
		logger: logger,
	}, nil
}

// Do executes the transaction and maps its outcome to the error taxonomy.
// The sink is driven on the calling goroutine; the source is read by the
// net/http transport, which writes the request body from its own goroutine.
func (e *executor) Do(ctx context.Context, tx *Transaction) (*txResult, *s3cerrors.Error) {
	if e.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RequestTimeout)
		defer cancel()
	}

	var body io.Reader
	if tx.Source != nil {
		body = tx.Source
	}
	req, err := http.NewRequestWithContext(ctx, tx.Method, tx.URL, body)
	if err != nil {
		return nil, s3cerrors.New(tx.Op, s3cerrors.Internal, err).
			WithBucket(tx.Bucket).WithKey(tx.Key)
	}
	if tx.Source != nil {
		req.ContentLength = tx.ContentLength
	}
	for k, vs := range tx.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if aerr := e.applyAuth(ctx, req, tx); aerr != nil {
		return nil, aerr.WithBucket(tx.Bucket).WithKey(tx.Key)
	}

	resp, err := e.httpc.Do(req)
	if err != nil {
		if tx.Source != nil && tx.Source.Err() != nil {
			return nil, s3cerrors.New(tx.Op, s3cerrors.IO, tx.Source.Err()).
				WithBucket(tx.Bucket).WithKey(tx.Key)
		}
		return nil, s3cerrors.MapTransport(tx.Op, err).
			WithBucket(tx.Bucket).WithKey(tx.Key)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if derr := e.drainBody(resp.Body, tx); derr != nil {
			return nil, derr.WithBucket(tx.Bucket).WithKey(tx.Key)
		}
		return &txResult{
			Status:        resp.StatusCode,
			ETag:          strings.Trim(resp.Header.Get("Etag"), `"`),
			ContentLength: resp.ContentLength,
		}, nil
	}

	// Failed transaction: keep the error body out of the caller's sink,
	// but retain it in the owned response buffer when one exists so it
	// can be inspected before teardown.
	snippet := e.readErrorBody(resp.Body, tx)
	serr := s3cerrors.FromStatus(tx.Op, resp.StatusCode).
		WithBucket(tx.Bucket).WithKey(tx.Key)
	if snippet != "" {
		serr.WithMessage("HTTP status " + resp.Status + ": " + snippet)
	}
	return nil, serr
}

// drainBody streams the response into the transaction's sink using a pooled
// transfer buffer. A capped sink stops the copy cleanly when full.
func (e *executor) drainBody(body io.Reader, tx *Transaction) *s3cerrors.Error {
	buf := e.bufs.Get()
	defer e.bufs.Put(buf)

	_, err := io.CopyBuffer(onlyWriter{tx.Sink}, body, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errSinkLimit):
		return nil
	case tx.Sink.Err() != nil:
		return s3cerrors.New(tx.Op, s3cerrors.IO, tx.Sink.Err())
	default:
		return s3cerrors.MapTransport(tx.Op, err)
	}
}

const errorBodyLimit = 8 * 1024

// readErrorBody captures up to errorBodyLimit bytes of a non-2xx response
// for diagnostics and, when the transaction owns a response buffer, retains
// the bytes there as well.
func (e *executor) readErrorBody(body io.Reader, tx *Transaction) string {
	data, _ := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	if len(data) == 0 {
		return ""
	}
	if tx.RespBuf != nil {
		tx.RespBuf.Reset()
		_, _ = tx.RespBuf.Write(data)
	}
	return strings.TrimSpace(string(data))
}

// onlyWriter hides any ReadFrom so io.CopyBuffer always uses the pooled
// buffer and the sink's Write path.
type onlyWriter struct{ w io.Writer }

func (o onlyWriter) Write(p []byte) (int, error) { return o.w.Write(p) }
