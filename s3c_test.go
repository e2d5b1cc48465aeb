package s3c_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3c "github.com/objcore/s3c"
	"github.com/objcore/s3c/errors"
	"github.com/objcore/s3c/internal/testutil"
	"github.com/objcore/s3c/runner"
	"github.com/objcore/s3c/s3types"
)

func newTestClient(t *testing.T, server *testutil.S3Server, opts ...s3types.Option) *s3c.Client {
	t.Helper()
	base := []s3types.Option{
		s3c.WithEndpoint(server.URL()),
		s3c.WithRegion("us-east-1"),
		s3c.WithCredentials("test", "test"),
	}
	client, err := s3c.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPutGetRoundTripWithFiles(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "firstbucket"))

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.txt")
	payload := []byte("Hello S3 stress test! ")
	require.NoError(t, os.WriteFile(srcPath, payload, 0o644))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()

	putRes, err := client.PutObject(ctx, "firstbucket", "hello.txt", src, 0, 22)
	require.NoError(t, err)
	assert.Equal(t, int64(22), putRes.BytesSent)

	dstPath := filepath.Join(dir, "dst.txt")
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer dst.Close()

	getRes, err := client.GetObject(ctx, "firstbucket", "hello.txt", dst, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(22), getRes.BytesWritten)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPutObjectValidation(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	f, err := os.CreateTemp(t.TempDir(), "data")
	require.NoError(t, err)
	defer f.Close()

	_, err = client.PutObject(ctx, "Bad_Bucket", "k", f, 0, 1)
	assert.True(t, errors.IsInvalidArg(err))

	_, err = client.PutObject(ctx, "good-bucket", "", f, 0, 1)
	assert.True(t, errors.IsInvalidArg(err))

	last := client.LastError()
	require.NotNil(t, last)
	assert.Equal(t, errors.InvalidArg, last.Code)
}

func TestGetObjectNotFound(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "bucket"))

	dst, err := os.CreateTemp(t.TempDir(), "dst")
	require.NoError(t, err)
	defer dst.Close()

	_, err = client.GetObject(ctx, "bucket", "does-not-exist", dst, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, 404, typed.HTTPStatus)
	assert.Equal(t, typed.Code, client.LastError().Code,
		"slot and returned error must agree")
}

func TestAccessDeniedSurfaces(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	server.SetAuthStatus(403)
	f, err := os.CreateTemp(t.TempDir(), "data")
	require.NoError(t, err)
	defer f.Close()
	_, werr := f.WriteString("x")
	require.NoError(t, werr)

	_, err = client.PutObject(ctx, "some-bucket", "k", f, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.IsAccessDenied(err))

	server.SetAuthStatus(401)
	_, err = client.PutObject(ctx, "some-bucket", "k", f, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestDefaultBucketFallback(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server, s3c.WithDefaultBucket("fallback-bucket"))
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, ""))

	list, err := client.ListObjects(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list.Objects)
}

func TestMissingBucketEverywhere(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	err := client.CreateBucket(ctx, "")
	assert.True(t, errors.IsInvalidArg(err))

	_, lerr := client.ListObjects(ctx, &s3types.ListObjectsInput{})
	assert.True(t, errors.IsInvalidArg(lerr))
}

func TestListObjectsPaginationScenario(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "t-b"))
	for _, key := range testutil.NumberedKeys(5) {
		server.PutObjectDirect("t-b", key, []byte("data"))
	}

	page1, err := client.ListObjects(ctx, &s3types.ListObjectsInput{
		Bucket: "t-b", MaxKeys: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page1.Objects, 2)
	assert.True(t, page1.IsTruncated)
	require.NotEmpty(t, page1.NextContinuationToken)

	page2, err := client.ListObjects(ctx, &s3types.ListObjectsInput{
		Bucket: "t-b", MaxKeys: 2, ContinuationToken: page1.NextContinuationToken,
	})
	require.NoError(t, err)
	assert.Len(t, page2.Objects, 2)
	assert.True(t, page2.IsTruncated)

	page3, err := client.ListObjects(ctx, &s3types.ListObjectsInput{
		Bucket: "t-b", MaxKeys: 2, ContinuationToken: page2.NextContinuationToken,
	})
	require.NoError(t, err)
	assert.Len(t, page3.Objects, 1)
	assert.False(t, page3.IsTruncated)
}

func TestDeleteObjectsScenario(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "del-bucket"))
	for _, key := range []string{"batch/a", "batch/b", "batch/c"} {
		server.PutObjectDirect("del-bucket", key, []byte("x"))
	}

	res, err := client.DeleteObjects(ctx, "del-bucket", []s3types.ObjectIdentifier{
		{Key: "batch/a"}, {Key: "batch/b"}, {Key: "batch/c"},
	}, s3c.WithQuiet())
	require.NoError(t, err)
	assert.Empty(t, res.Errors)

	list, err := client.ListObjects(ctx, &s3types.ListObjectsInput{
		Bucket: "del-bucket", Prefix: "batch/",
	})
	require.NoError(t, err)
	assert.Empty(t, list.Objects)
}

func TestDeleteObjectsEmptyKeyFailsEarly(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)

	_, err := client.DeleteObjects(context.Background(), "b-b-b",
		[]s3types.ObjectIdentifier{{Key: "ok"}, {Key: ""}})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArg(err))
}

func TestContentTypeDetection(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "ct-bucket"))

	// Minimal PNG signature; mimetype resolves it without the full image.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
		make([]byte, 64)...)
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, png, 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = client.PutObject(ctx, "ct-bucket", "img.png", f, 0, int64(len(png)),
		s3c.WithContentTypeDetection())
	require.NoError(t, err)
	assert.Equal(t, "image/png", server.LastRequestHeaders().Get("Content-Type"))

	_, err = client.PutObject(ctx, "ct-bucket", "explicit.bin", f, 0, int64(len(png)),
		s3c.WithContentType("application/x-custom"))
	require.NoError(t, err)
	assert.Equal(t, "application/x-custom",
		server.LastRequestHeaders().Get("Content-Type"))
}

func TestGetObjectWithRangeOption(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "rng-bucket"))
	server.PutObjectDirect("rng-bucket", "data", []byte("0123456789"))

	dst, err := os.CreateTemp(t.TempDir(), "dst")
	require.NoError(t, err)
	defer dst.Close()

	res, err := client.GetObject(ctx, "rng-bucket", "data", dst, 0, 0,
		s3c.WithRange("bytes=3-6"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.BytesWritten)

	got := make([]byte, 4)
	_, err = dst.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(got))
}

func TestOperationsThroughWorkerPoolRunner(t *testing.T) {
	server := testutil.NewS3Server(t)
	pool := runner.NewPool(3)
	defer pool.Close()

	client := newTestClient(t, server,
		s3c.WithRunner(pool),
		s3c.WithBackend(s3types.BackendMultiplexed),
	)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "pool-bucket"))
	server.PutObjectDirect("pool-bucket", "k", []byte("v"))

	list, err := client.ListObjects(ctx, &s3types.ListObjectsInput{Bucket: "pool-bucket"})
	require.NoError(t, err)
	assert.Len(t, list.Objects, 1)
}

func TestGetObjectMaxSizeThroughClient(t *testing.T) {
	server := testutil.NewS3Server(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "cap-bucket"))
	server.PutObjectDirect("cap-bucket", "big", testutil.Payload(1000))

	dst, err := os.CreateTemp(t.TempDir(), "dst")
	require.NoError(t, err)
	defer dst.Close()

	res, err := client.GetObject(ctx, "cap-bucket", "big", dst, 0, 100)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.BytesWritten, int64(100))
}
