// Package s3c provides functional options for configuring client behavior.
package s3c

import (
	"time"

	"pkt.systems/pslog"

	"github.com/objcore/s3c/runner"
	"github.com/objcore/s3c/s3types"
)

// WithEndpoint sets the base URL of the object store, e.g.
// "http://127.0.0.1:9000". A single trailing slash is tolerated.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithRegion sets the signing region. Required when SigV4 is enabled.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithCredentials sets the access key and secret key.
func WithCredentials(accessKey, secretKey string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithSessionToken sets the temporary session token, sent as
// x-amz-security-token on every request.
func WithSessionToken(token string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.SessionToken = token
	}
}

// WithDefaultBucket sets the bucket used by operations that pass an empty
// bucket name.
func WithDefaultBucket(bucket string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.DefaultBucket = bucket
	}
}

// WithBackend selects the execution backend. Default is BackendSerial.
func WithBackend(kind s3types.BackendKind) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Backend = kind
	}
}

// WithSigV4 selects AWS Signature Version 4 over HTTP Basic auth.
func WithSigV4(require bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.RequireSigV4 = require
	}
}

// WithConnectTimeout bounds connection establishment per transaction.
// Default is 5 seconds.
func WithConnectTimeout(d time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if d > 0 {
			c.ConnectTimeout = d
		}
	}
}

// WithRequestTimeout bounds a whole transaction. Default is 30 seconds.
func WithRequestTimeout(d time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if d > 0 {
			c.RequestTimeout = d
		}
	}
}

// WithIdlePoll sets the multiplexed driver's poll interval while requests
// are in flight. Default is 50 milliseconds.
func WithIdlePoll(d time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if d > 0 {
			c.IdlePoll = d
		}
	}
}

// WithMaxConnections caps the idle connections the client keeps pooled
// across all hosts. Default is 64. The number of open connections across
// hosts is not capped; only WithMaxConnectionsPerHost bounds open connections.
func WithMaxConnections(n int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// WithMaxConnectionsPerHost caps connections per host. Default is 16.
func WithMaxConnectionsPerHost(n int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if n > 0 {
			c.MaxConnsPerHost = n
		}
	}
}

// WithCAFile adds a PEM bundle to the trusted TLS roots.
func WithCAFile(path string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CAFile = path
	}
}

// WithCAPath adds every PEM file under a directory to the trusted TLS roots.
func WithCAPath(path string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CAPath = path
	}
}

// WithProxy routes all transactions through the given proxy URL.
func WithProxy(proxyURL string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Proxy = proxyURL
	}
}

// WithInsecureSkipVerify disables TLS peer and hostname verification.
// Only use this against local test deployments.
func WithInsecureSkipVerify(skip bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.InsecureSkipVerify = skip
	}
}

// WithLogger supplies a logger for client diagnostics.
// Passing nil falls back to pslog.NoopLogger().
func WithLogger(logger pslog.Base) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if logger == nil {
			c.Logger = pslog.NoopLogger()
			return
		}
		c.Logger = logger
	}
}

// WithRunner bridges the blocking operations onto a host-owned worker.
// Defaults to runner.Direct, which invokes on the calling goroutine.
func WithRunner(r runner.BlockingRunner) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Runner = r
	}
}

// WithContentType sets the Content-Type header for an upload.
func WithContentType(contentType string) s3types.PutOption {
	return func(c *s3types.PutOptionConfig) {
		c.ContentType = contentType
	}
}

// WithContentTypeDetection sniffs the Content-Type from the leading bytes
// of the source when no explicit type is given.
func WithContentTypeDetection() s3types.PutOption {
	return func(c *s3types.PutOptionConfig) {
		c.DetectContentType = true
	}
}

// WithRange passes a Range header through to a download,
// e.g. "bytes=0-99".
func WithRange(spec string) s3types.GetOption {
	return func(c *s3types.GetOptionConfig) {
		c.Range = spec
	}
}

// WithQuiet asks the server to omit per-object success entries from a
// batch delete response.
func WithQuiet() s3types.DeleteOption {
	return func(c *s3types.DeleteOptionConfig) {
		c.Quiet = true
	}
}
