package engine

import (
	"context"
	"net/http"
	"time"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/rest"
	"github.com/objcore/s3c/s3types"
)

// Get downloads an object, writing the body positionally to in.Dst starting
// at in.Off. A non-zero MaxSize caps the bytes written.
func (o *operations) Get(ctx context.Context, in *GetInput) (*s3types.GetResult, *s3cerrors.Error) {
	start := time.Now()
	tx, err := newGetTransaction(o.cfg, in)
	if err != nil {
		return nil, err
	}

	res, err := o.perform(ctx, tx)
	if err != nil {
		return nil, err
	}

	o.logger.Trace("get_object done",
		"bucket", tx.Bucket, "key", tx.Key, "bytes", tx.Sink.Total())
	return &s3types.GetResult{
		BytesWritten:  tx.Sink.Total(),
		ContentLength: res.ContentLength,
		Duration:      time.Since(start),
	}, nil
}

// newGetTransaction wires a GET /{bucket}/{key} with a positional sink.
func newGetTransaction(cfg *Config, in *GetInput) (*Transaction, *s3cerrors.Error) {
	const op = "get_object"

	if in.Dst == nil {
		return nil, s3cerrors.Newf(op, s3cerrors.InvalidArg, "destination must not be nil")
	}
	if in.Off < 0 {
		return nil, s3cerrors.Newf(op, s3cerrors.InvalidArg,
			"offset must not be negative, got %d", in.Off)
	}
	if in.MaxSize < 0 {
		return nil, s3cerrors.Newf(op, s3cerrors.InvalidArg,
			"max size must not be negative, got %d", in.MaxSize)
	}

	header := http.Header{}
	if in.Range != "" {
		header.Set("Range", in.Range)
	}

	return &Transaction{
		Op:     op,
		Method: http.MethodGet,
		URL:    rest.ObjectURL(cfg.Endpoint, in.Bucket, in.Key),
		Header: header,
		Sink:   NewWriterAtSink(in.Dst, in.Off, in.MaxSize),
		Auth:   authFromConfig(cfg),
		Bucket: in.Bucket,
		Key:    in.Key,
	}, nil
}
