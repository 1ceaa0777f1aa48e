//go:build !linux && !darwin && !windows

package sysinfo

func screenDimensions() (int, int, error) {
	return 0, 0, ErrNoDisplay
}
