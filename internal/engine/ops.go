package engine

import (
	"context"

	"pkt.systems/pslog"

	s3cerrors "github.com/objcore/s3c/errors"
)

// performFunc executes one transaction: directly on the calling goroutine
// for the serial backend, through the pending queue for the multiplexed one.
type performFunc func(ctx context.Context, tx *Transaction) (*txResult, *s3cerrors.Error)

// operations implements the five S3 operations on top of a performFunc.
// Both backends embed it; only the execution strategy differs. Bucket
// defaulting and argument validation happen in the client before a
// transaction is built.
type operations struct {
	cfg     *Config
	logger  pslog.Base
	perform performFunc
}
