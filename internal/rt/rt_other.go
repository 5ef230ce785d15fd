//go:build !linux

package rt

import (
	"log/slog"
	"runtime"
)

// Prepare only reports that scheduling hints are unsupported here.
func Prepare(o Options, logger *slog.Logger) {
	if o.Enabled() {
		logger.Warn("rt: scheduling hints are not supported", "os", runtime.GOOS)
	}
}
