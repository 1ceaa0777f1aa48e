package util

import "sync/atomic"

// SafeCounter is an int that is safe to use concurrently.
type SafeCounter struct {
	value atomic.Int32
}

// NewSafeIntWithValue creates a SafeCounter holding initialValue.
func NewSafeIntWithValue(initialValue int) *SafeCounter {
	c := &SafeCounter{}
	c.value.Store(int32(initialValue))
	return c
}

// Set stores newValue and returns the previous value.
func (si *SafeCounter) Set(newValue int) int {
	return int(si.value.Swap(int32(newValue)))
}

// Value returns the current value.
func (si *SafeCounter) Value() int {
	return int(si.value.Load())
}

// SafeFlag is a bool that is safe to use concurrently.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeBool creates a SafeFlag that is false.
func NewSafeBool() *SafeFlag {
	return &SafeFlag{}
}

// Set stores newValue and reports whether it changed the flag.
func (sb *SafeFlag) Set(newValue bool) bool {
	return sb.value.Swap(newValue) != newValue
}

// Value returns the current value.
func (sb *SafeFlag) Value() bool {
	return sb.value.Load()
}
