//go:build !linux

package gpio

import (
	"fmt"
	"runtime"
)

func newCdevBackend(Config) (backend, error) {
	return nil, fmt.Errorf("gpio: gpiocdev backend is not available on %s", runtime.GOOS)
}
