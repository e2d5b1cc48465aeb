package engine

import (
	"context"
	"net/http"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/pool"
	"github.com/objcore/s3c/internal/rest"
	"github.com/objcore/s3c/s3types"
)

// List performs one page of ListObjectsV2 and parses the XML response.
func (o *operations) List(ctx context.Context, in *s3types.ListObjectsInput) (*s3types.ListObjectsResult, *s3cerrors.Error) {
	tx := newListTransaction(o.cfg, in)

	if _, err := o.perform(ctx, tx); err != nil {
		return nil, err
	}

	result, perr := parseListResult(tx.RespBuf.Bytes())
	if perr != nil {
		return nil, perr.WithBucket(in.Bucket)
	}
	o.logger.Trace("list_objects done",
		"bucket", tx.Bucket, "keys", len(result.Objects),
		"truncated", result.IsTruncated)
	return result, nil
}

// newListTransaction wires GET /{bucket}?list-type=2 with an owned response
// buffer.
func newListTransaction(cfg *Config, in *s3types.ListObjectsInput) *Transaction {
	resp := &pool.Buffer{}
	return &Transaction{
		Op:     "list_objects",
		Method: http.MethodGet,
		URL: rest.ListURL(cfg.Endpoint, in.Bucket, in.Prefix,
			in.MaxKeys, in.ContinuationToken),
		Header:  http.Header{},
		Sink:    NewMemSink(resp),
		RespBuf: resp,
		Auth:    authFromConfig(cfg),
		Bucket:  in.Bucket,
	}
}
