package engine

import (
	"context"
	"net/http"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/rest"
)

// CreateBucket issues a bodyless PUT /{bucket}.
func (o *operations) CreateBucket(ctx context.Context, bucket string) *s3cerrors.Error {
	tx := newCreateBucketTransaction(o.cfg, bucket)
	if _, err := o.perform(ctx, tx); err != nil {
		return err
	}
	o.logger.Trace("create_bucket done", "bucket", bucket)
	return nil
}

func newCreateBucketTransaction(cfg *Config, bucket string) *Transaction {
	return &Transaction{
		Op:     "create_bucket",
		Method: http.MethodPut,
		URL:    rest.BucketURL(cfg.Endpoint, bucket),
		Header: http.Header{},
		Sink:   NewDiscardSink(),
		Auth:   authFromConfig(cfg),
		Bucket: bucket,
	}
}
