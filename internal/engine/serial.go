package engine

import (
	s3cerrors "github.com/objcore/s3c/errors"
)

// Serial executes one transaction at a time on the calling goroutine.
// It performs no synchronization of its own: callers sharing one Serial
// backend must serialize access externally.
type Serial struct {
	operations
	exec *executor
}

func newSerial(cfg *Config) (*Serial, *s3cerrors.Error) {
	exec, err := newExecutor(cfg)
	if err != nil {
		return nil, err
	}
	s := &Serial{exec: exec}
	s.operations = operations{
		cfg:     cfg,
		logger:  exec.logger,
		perform: exec.Do,
	}
	return s, nil
}

// Close releases idle connections. There is no in-flight work to drain:
// every transaction completed before its operation returned.
func (s *Serial) Close() error {
	s.exec.httpc.CloseIdleConnections()
	return nil
}
