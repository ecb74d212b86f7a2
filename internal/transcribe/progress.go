package transcribe

// ProgressFunc receives progress updates as a percentage and a short
// status line. It may be invoked from any suspension point, repeatedly,
// and must be cheap; a nil func is valid and discards updates.
type ProgressFunc func(percent int, status string)

// Report invokes the callback with the percentage clamped to [0, 100].
// Safe on a nil func.
func (f ProgressFunc) Report(percent int, status string) {
	if f == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	f(percent, status)
}

// Band maps a sub-progress percentage into the slice [low, high] of the
// overall progress scale.
func Band(low, high, subPercent int) int {
	if subPercent < 0 {
		subPercent = 0
	}
	if subPercent > 100 {
		subPercent = 100
	}
	return low + (high-low)*subPercent/100
}
