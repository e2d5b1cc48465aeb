package engine

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	s3cerrors "github.com/objcore/s3c/errors"
)

// Global one-shot initialization of the HTTP stack: the system trust store
// is loaded exactly once per process, no matter how many clients are
// created concurrently. It is never torn down.
var (
	globalInitOnce sync.Once
	systemRoots    *x509.CertPool
)

func initHTTPStack() {
	globalInitOnce.Do(func() {
		roots, err := x509.SystemCertPool()
		if err != nil || roots == nil {
			roots = x509.NewCertPool()
		}
		systemRoots = roots
	})
}

// newTransport builds the per-client transport carrying the connection pool
// limits, timeouts, proxy and TLS settings.
func newTransport(cfg *Config) (*http.Transport, *s3cerrors.Error) {
	initHTTPStack()

	tlsCfg := &tls.Config{
		RootCAs:            systemRoots.Clone(),
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, s3cerrors.New("client_new", s3cerrors.Init, err).
				WithMessage("cannot read CA file " + cfg.CAFile)
		}
		if !tlsCfg.RootCAs.AppendCertsFromPEM(pem) {
			return nil, s3cerrors.Newf("client_new", s3cerrors.Init,
				"no certificates found in CA file %s", cfg.CAFile)
		}
	}
	if cfg.CAPath != "" {
		if err := appendCADir(tlsCfg.RootCAs, cfg.CAPath); err != nil {
			return nil, err
		}
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}

	tr := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsCfg,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		MaxIdleConns:        cfg.MaxConns,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		ForceAttemptHTTP2:   true,
		Proxy:               http.ProxyFromEnvironment,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, s3cerrors.New("client_new", s3cerrors.InvalidArg, err).
				WithMessage("invalid proxy URL " + cfg.Proxy)
		}
		tr.Proxy = http.ProxyURL(proxyURL)
	}
	return tr, nil
}

func appendCADir(roots *x509.CertPool, dir string) *s3cerrors.Error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return s3cerrors.New("client_new", s3cerrors.Init, err).
			WithMessage("cannot read CA path " + dir)
	}
	appended := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pem, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if roots.AppendCertsFromPEM(pem) {
			appended = true
		}
	}
	if !appended {
		return s3cerrors.Newf("client_new", s3cerrors.Init,
			"no certificates found under CA path %s", dir)
	}
	return nil
}
