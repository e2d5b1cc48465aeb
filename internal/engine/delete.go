package engine

import (
	"context"
	"net/http"

	s3cerrors "github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/pool"
	"github.com/objcore/s3c/internal/rest"
	"github.com/objcore/s3c/s3types"
)

// Delete performs a Multi-Object Delete. On a non-2xx response the raw body
// is retained in the transaction's response buffer and logged before the
// error is returned.
func (o *operations) Delete(ctx context.Context, in *DeleteInput) (*s3types.DeleteResult, *s3cerrors.Error) {
	tx, err := newDeleteTransaction(o.cfg, in)
	if err != nil {
		return nil, err
	}

	if _, err := o.perform(ctx, tx); err != nil {
		if tx.RespBuf.Len() > 0 {
			o.logger.Debug("delete_objects failed",
				"bucket", tx.Bucket, "response", tx.RespBuf.String())
		}
		return nil, err
	}

	result, perr := parseDeleteResult(tx.RespBuf.Bytes())
	if perr != nil {
		return nil, perr.WithBucket(in.Bucket)
	}
	o.logger.Trace("delete_objects done",
		"bucket", tx.Bucket, "count", len(in.Objects),
		"errors", len(result.Errors))
	return result, nil
}

// newDeleteTransaction wires POST /{bucket}?delete with the XML body, its
// Content-MD5 and an owned response buffer.
func newDeleteTransaction(cfg *Config, in *DeleteInput) (*Transaction, *s3cerrors.Error) {
	body, err := rest.DeleteBody(in.Objects, in.Quiet)
	if err != nil {
		return nil, err.WithBucket(in.Bucket)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/xml")
	header.Set("Content-MD5", rest.ContentMD5(body))

	resp := &pool.Buffer{}
	return &Transaction{
		Op:            "delete_objects",
		Method:        http.MethodPost,
		URL:           rest.DeleteURL(cfg.Endpoint, in.Bucket),
		Header:        header,
		ContentLength: int64(len(body)),
		Source:        NewMemSource(body),
		Sink:          NewMemSink(resp),
		RespBuf:       resp,
		PayloadHash:   payloadHashOf(body),
		Auth:          authFromConfig(cfg),
		Bucket:        in.Bucket,
	}, nil
}
