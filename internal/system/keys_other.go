//go:build !linux

package system

import "context"

// WatchKeys is a no-op outside linux.
func WatchKeys(ctx context.Context, logger Logger, onKey func(Key)) {
	if logger != nil {
		logger.Infof("input", "key controls are only supported on linux")
	}
}
