// Package rt applies scheduling hints that make bit-banged bus timing more
// reliable. Every hint is best effort.
package rt

// Options select the hints. The zero value changes nothing.
type Options struct {
	LockMemory bool `help:"Lock process memory to avoid page faults while polling" env:"PSXPAD_RT_LOCK_MEMORY"`
	CPU        int  `help:"Pin the polling thread to this CPU (-1 leaves it unpinned)" default:"-1" env:"PSXPAD_RT_CPU"`
	Nice       int  `help:"Nice value for the polling thread (0 leaves it unchanged)" env:"PSXPAD_RT_NICE"`
}

// Enabled reports whether any hint is requested.
func (o Options) Enabled() bool {
	return o.LockMemory || o.CPU >= 0 || o.Nice != 0
}
