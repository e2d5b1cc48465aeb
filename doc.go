// Package s3c is a client library for Amazon S3 and S3-compatible object
// stores (MinIO, LocalStack, and friends) built around a reactor-agnostic
// request-execution engine.
//
// The client binds each of the five supported operations — PutObject,
// GetObject, CreateBucket, ListObjects and DeleteObjects — to streaming I/O
// against positional readers and writers or in-memory buffers, signs
// requests with HTTP Basic auth or AWS Signature Version 4, and executes
// them through one of two interchangeable backends: a serial backend that
// runs one transaction at a time on the calling goroutine, and a
// multiplexed backend that services a pending queue from a dedicated driver
// goroutine over a shared connection pool.
//
// Basic usage:
//
//	client, err := s3c.New(
//	    s3c.WithEndpoint("http://127.0.0.1:9000"),
//	    s3c.WithRegion("us-east-1"),
//	    s3c.WithCredentials("minioadmin", "minioadmin"),
//	    s3c.WithSigV4(true),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	f, _ := os.Open("hello.txt")
//	defer f.Close()
//	info, _ := f.Stat()
//	_, err = client.PutObject(ctx, "firstbucket", "hello.txt", f, 0, info.Size())
//
// Hosts with cooperative scheduling offload the blocking calls through a
// runner.BlockingRunner (see the runner package); event-loop integration is
// specified by the reactor package.
package s3c
