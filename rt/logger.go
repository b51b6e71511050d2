package rt

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the runtime's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the runtime's logger.
// This must be called before the first exported entry point runs.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Checked reports whether the runtime was built in the checked tier.
func Checked() bool {
	return checked
}

// fail reports a contract violation and panics with it. Only called from
// checked-tier branches.
func fail(err error) {
	Logger().Error("runtime contract violation", zap.Error(err))
	panic(err)
}

// abort terminates on the unchecked path without formatting anything.
func abort() {
	panic("unreachable")
}
