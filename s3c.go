// Package s3c: the five public S3 operations.
package s3c

import (
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/engine"
	"github.com/objcore/s3c/internal/validation"
	"github.com/objcore/s3c/s3types"
)

// sniffLen is how many leading bytes content-type detection examines.
const sniffLen = 3072

// PutObject uploads size bytes read positionally from src starting at off.
// The source's file offset (for an *os.File) is never touched. Size must be
// positive. A read error on the source fails the transfer with Io; a source
// that ends before size bytes fails it with a transport-level error.
func (c *Client) PutObject(
	ctx context.Context,
	bucket, key string,
	src io.ReaderAt,
	off, size int64,
	opts ...s3types.PutOption,
) (*s3types.PutResult, error) {
	const op = "put_object"

	optCfg := s3types.PutOptionConfig{}
	for _, opt := range opts {
		opt(&optCfg)
	}

	bucket, key, verr := c.validateTarget(op, bucket, key)
	if verr != nil {
		return nil, c.record(op, verr)
	}

	contentType := optCfg.ContentType
	if contentType == "" && optCfg.DetectContentType && src != nil && size > 0 {
		contentType = detectContentType(src, off, size)
	}

	in := &engine.PutInput{
		Bucket:      bucket,
		Key:         key,
		Src:         src,
		Off:         off,
		Size:        size,
		ContentType: contentType,
	}

	var result *s3types.PutResult
	err := c.runner.Run(ctx, func() error {
		res, e := c.backend.Put(ctx, in)
		if e != nil {
			return e
		}
		result = res
		return nil
	})
	return result, c.record(op, coerce(op, err))
}

// GetObject downloads an object, writing the body positionally to dst
// starting at off. maxSize 0 means uncapped; otherwise at most maxSize
// bytes are written and the remainder of the body is discarded.
func (c *Client) GetObject(
	ctx context.Context,
	bucket, key string,
	dst io.WriterAt,
	off, maxSize int64,
	opts ...s3types.GetOption,
) (*s3types.GetResult, error) {
	const op = "get_object"

	optCfg := s3types.GetOptionConfig{}
	for _, opt := range opts {
		opt(&optCfg)
	}

	bucket, key, verr := c.validateTarget(op, bucket, key)
	if verr != nil {
		return nil, c.record(op, verr)
	}

	in := &engine.GetInput{
		Bucket:  bucket,
		Key:     key,
		Dst:     dst,
		Off:     off,
		MaxSize: maxSize,
		Range:   optCfg.Range,
	}

	var result *s3types.GetResult
	err := c.runner.Run(ctx, func() error {
		res, e := c.backend.Get(ctx, in)
		if e != nil {
			return e
		}
		result = res
		return nil
	})
	return result, c.record(op, coerce(op, err))
}

// CreateBucket creates a bucket with a bodyless PUT.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	const op = "create_bucket"

	bucket = c.defaultBucket(bucket)
	if err := validation.ValidateBucketName(bucket); err != nil {
		return c.record(op, asInvalidArg(op, err))
	}

	err := c.runner.Run(ctx, func() error {
		if e := c.backend.CreateBucket(ctx, bucket); e != nil {
			return e
		}
		return nil
	})
	return c.record(op, coerce(op, err))
}

// ListObjects performs one page of ListObjectsV2. Call again with the
// returned continuation token to fetch the next page.
func (c *Client) ListObjects(
	ctx context.Context,
	in *s3types.ListObjectsInput,
) (*s3types.ListObjectsResult, error) {
	const op = "list_objects"

	if in == nil {
		in = &s3types.ListObjectsInput{}
	}
	resolved := *in
	resolved.Bucket = c.defaultBucket(resolved.Bucket)
	if err := validation.ValidateBucketName(resolved.Bucket); err != nil {
		return nil, c.record(op, asInvalidArg(op, err))
	}

	var result *s3types.ListObjectsResult
	err := c.runner.Run(ctx, func() error {
		res, e := c.backend.List(ctx, &resolved)
		if e != nil {
			return e
		}
		result = res
		return nil
	})
	return result, c.record(op, coerce(op, err))
}

// DeleteObjects deletes up to 1000 objects in one Multi-Object Delete
// request. An empty key anywhere in the batch fails the whole call before
// any request is sent.
func (c *Client) DeleteObjects(
	ctx context.Context,
	bucket string,
	objects []s3types.ObjectIdentifier,
	opts ...s3types.DeleteOption,
) (*s3types.DeleteResult, error) {
	const op = "delete_objects"

	optCfg := s3types.DeleteOptionConfig{}
	for _, opt := range opts {
		opt(&optCfg)
	}

	bucket = c.defaultBucket(bucket)
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, c.record(op, asInvalidArg(op, err))
	}

	in := &engine.DeleteInput{
		Bucket:  bucket,
		Objects: objects,
		Quiet:   optCfg.Quiet,
	}

	var result *s3types.DeleteResult
	err := c.runner.Run(ctx, func() error {
		res, e := c.backend.Delete(ctx, in)
		if e != nil {
			return e
		}
		result = res
		return nil
	})
	return result, c.record(op, coerce(op, err))
}

func (c *Client) defaultBucket(bucket string) string {
	if bucket == "" {
		return c.cfg.DefaultBucket
	}
	return bucket
}

// validateTarget resolves the default bucket and validates bucket and key.
func (c *Client) validateTarget(op, bucket, key string) (string, string, *errors.Error) {
	bucket = c.defaultBucket(bucket)
	if err := validation.ValidateBucketName(bucket); err != nil {
		return "", "", asInvalidArg(op, err)
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return "", "", asInvalidArg(op, err)
	}
	return bucket, key, nil
}

// coerce narrows an error produced inside a runner closure back to the
// typed error. Runner-level failures (pool closed, context expired while
// queued) surface as Internal.
func coerce(op string, err error) *errors.Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*errors.Error); ok {
		return e
	}
	return errors.New(op, errors.Internal, err).WithMessage(err.Error())
}

// detectContentType sniffs the media type from the leading bytes of the
// source. Failures fall back to no Content-Type header at all.
func detectContentType(src io.ReaderAt, off, size int64) string {
	n := int64(sniffLen)
	if size < n {
		n = size
	}
	buf := make([]byte, n)
	read, err := src.ReadAt(buf, off)
	if read == 0 && err != nil {
		return ""
	}
	return mimetype.Detect(buf[:read]).String()
}
