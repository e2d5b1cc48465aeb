package engine

import (
	"context"
	"net/http"
	"time"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/rest"
	"github.com/objcore/s3c/s3types"
)

// Put uploads Size bytes read positionally from in.Src starting at in.Off.
func (o *operations) Put(ctx context.Context, in *PutInput) (*s3types.PutResult, *s3cerrors.Error) {
	start := time.Now()
	tx, err := newPutTransaction(o.cfg, in)
	if err != nil {
		return nil, err
	}

	res, err := o.perform(ctx, tx)
	if err != nil {
		return nil, err
	}

	o.logger.Trace("put_object done",
		"bucket", tx.Bucket, "key", tx.Key, "bytes", tx.Source.Total())
	return &s3types.PutResult{
		ETag:      res.ETag,
		BytesSent: tx.Source.Total(),
		Duration:  time.Since(start),
	}, nil
}

// newPutTransaction wires a PUT /{bucket}/{key} with a streaming body.
func newPutTransaction(cfg *Config, in *PutInput) (*Transaction, *s3cerrors.Error) {
	const op = "put_object"

	if in.Src == nil {
		return nil, s3cerrors.Newf(op, s3cerrors.InvalidArg, "source must not be nil")
	}
	if in.Size <= 0 {
		return nil, s3cerrors.Newf(op, s3cerrors.InvalidArg,
			"size must be positive, got %d", in.Size)
	}
	if in.Off < 0 {
		return nil, s3cerrors.Newf(op, s3cerrors.InvalidArg,
			"offset must not be negative, got %d", in.Off)
	}

	header := http.Header{}
	if in.ContentType != "" {
		header.Set("Content-Type", in.ContentType)
	}

	return &Transaction{
		Op:            op,
		Method:        http.MethodPut,
		URL:           rest.ObjectURL(cfg.Endpoint, in.Bucket, in.Key),
		Header:        header,
		ContentLength: in.Size,
		Source:        NewReaderAtSource(in.Src, in.Off, in.Size),
		Sink:          NewDiscardSink(),
		PayloadHash:   unsignedPayload,
		Auth:          authFromConfig(cfg),
		Bucket:        in.Bucket,
		Key:           in.Key,
	}, nil
}
