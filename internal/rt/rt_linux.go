package rt

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// Prepare applies o to the calling thread. Call it from the goroutine that
// polls the pad after runtime.LockOSThread.
func Prepare(o Options, logger *slog.Logger) {
	if o.LockMemory {
		if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
			logger.Warn("rt: failed to lock memory", "error", err)
		} else {
			logger.Debug("rt: memory locked")
		}
	}
	if o.CPU >= 0 {
		var set unix.CPUSet
		set.Zero()
		set.Set(o.CPU)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			logger.Warn("rt: failed to set cpu affinity", "cpu", o.CPU, "error", err)
		} else {
			logger.Debug("rt: pinned to cpu", "cpu", o.CPU)
		}
	}
	if o.Nice != 0 {
		tid := unix.Gettid()
		if err := unix.Setpriority(unix.PRIO_PROCESS, tid, o.Nice); err != nil {
			logger.Warn("rt: failed to set priority", "nice", o.Nice, "error", err)
		} else {
			logger.Debug("rt: priority set", "nice", o.Nice)
		}
	}
}
