// Package s3c provides client initialization and configuration.
//
// The Client is a thin façade over the request-execution engine: it owns the
// credentials, the connection-pool limits, the chosen backend and the
// last-error slot, and delegates every operation to the backend through the
// configured blocking runner.
package s3c

import (
	"sync/atomic"

	"pkt.systems/pslog"

	"github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/engine"
	"github.com/objcore/s3c/runner"
	"github.com/objcore/s3c/s3types"
)

// Version is the library version.
const Version = "0.1.0"

// Client represents an S3 client bound to one endpoint and one execution
// backend. With the multiplexed backend a single Client is safe for
// concurrent use; the serial backend assumes external serialization.
type Client struct {
	cfg     s3types.ClientConfig
	backend engine.Backend
	runner  runner.BlockingRunner
	logger  pslog.Base

	// lastErr mirrors the most recent reported outcome. The authoritative
	// error is always the returned one; the slot is only meaningful under
	// single-threaded use.
	lastErr atomic.Pointer[errors.Error]
}

// New creates a new client. Endpoint, access key and secret key are
// required; region is additionally required when SigV4 is enabled.
//
// Example:
//
//	client, err := s3c.New(
//	    s3c.WithEndpoint("http://127.0.0.1:9000"),
//	    s3c.WithRegion("us-east-1"),
//	    s3c.WithCredentials("minioadmin", "minioadmin"),
//	    s3c.WithSigV4(true),
//	    s3c.WithBackend(s3types.BackendMultiplexed),
//	)
func New(opts ...s3types.Option) (*Client, error) {
	cfg := s3types.ClientConfig{
		Backend:         s3types.BackendSerial,
		ConnectTimeout:  s3types.DefaultConnectTimeout,
		RequestTimeout:  s3types.DefaultRequestTimeout,
		IdlePoll:        s3types.DefaultIdlePoll,
		MaxConns:        s3types.DefaultMaxConns,
		MaxConnsPerHost: s3types.DefaultMaxConnsPerHost,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Endpoint == "" {
		return nil, errors.Newf("client_new", errors.InvalidArg, "endpoint must be set")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.Newf("client_new", errors.InvalidArg,
			"access key and secret key must be set")
	}
	if cfg.RequireSigV4 && cfg.Region == "" {
		return nil, errors.Newf("client_new", errors.InvalidArg,
			"region must be set for SigV4")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	run := cfg.Runner
	if run == nil {
		run = runner.Direct{}
	}

	backend, berr := engine.New(cfg.Backend, &engine.Config{
		Endpoint:           cfg.Endpoint,
		Region:             cfg.Region,
		AccessKey:          cfg.AccessKey,
		SecretKey:          cfg.SecretKey,
		SessionToken:       cfg.SessionToken,
		DefaultBucket:      cfg.DefaultBucket,
		RequireSigV4:       cfg.RequireSigV4,
		ConnectTimeout:     cfg.ConnectTimeout,
		RequestTimeout:     cfg.RequestTimeout,
		IdlePoll:           cfg.IdlePoll,
		MaxConns:           cfg.MaxConns,
		MaxConnsPerHost:    cfg.MaxConnsPerHost,
		CAFile:             cfg.CAFile,
		CAPath:             cfg.CAPath,
		Proxy:              cfg.Proxy,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Logger:             logger,
	})
	if berr != nil {
		return nil, berr
	}

	c := &Client{
		cfg:     cfg,
		backend: backend,
		runner:  run,
		logger:  logger,
	}
	c.lastErr.Store(&errors.Error{Code: errors.OK, Op: "client_new"})
	logger.Debug("s3c client created",
		"endpoint", cfg.Endpoint, "backend", cfg.Backend.String(),
		"sigv4", cfg.RequireSigV4)
	return c, nil
}

// LastError returns the outcome of the most recent operation; Code is OK
// after a success. It is only meaningful when the client is used from a
// single goroutine.
func (c *Client) LastError() *errors.Error {
	return c.lastErr.Load()
}

// Close tears down the backend, draining any in-flight work first.
func (c *Client) Close() error {
	c.logger.Debug("s3c client closing")
	return c.backend.Close()
}

// record mirrors an operation outcome into the last-error slot and narrows
// the concrete error into the error interface (nil stays nil).
func (c *Client) record(op string, err *errors.Error) error {
	if err == nil {
		c.lastErr.Store(&errors.Error{Code: errors.OK, Op: op})
		return nil
	}
	c.lastErr.Store(err)
	return err
}

// asInvalidArg coerces a validation failure into the typed error.
func asInvalidArg(op string, err error) *errors.Error {
	if e, ok := err.(*errors.Error); ok {
		e.Op = op
		return e
	}
	return errors.New(op, errors.InvalidArg, err)
}
