package grid

import "fmt"

// Window is a skip/top pagination window.
type Window struct {
	// Skip is the number of leading rows to drop. Never negative.
	Skip int
	// Top is the maximum number of rows to return. Top <= 0 means no limit.
	Top int
}

// NewWindow creates a window. Negative skip is clamped to 0.
func NewWindow(skip, top int) Window {
	return Window{Skip: max(skip, 0), Top: top}
}

// Limited reports whether the window caps the number of rows.
func (w Window) Limited() bool { return w.Top > 0 }

// Bounds returns the half-open row range [lo, hi) the window selects out of
// n rows.
func (w Window) Bounds(n int) (lo, hi int) {
	lo = min(max(w.Skip, 0), n)
	hi = n
	if w.Top > 0 && w.Top < n-lo {
		hi = lo + w.Top
	}
	return lo, hi
}

func (w Window) String() string {
	if w.Top <= 0 {
		return fmt.Sprintf("skip %d", w.Skip)
	}
	return fmt.Sprintf("skip %d top %d", w.Skip, w.Top)
}
