package lookup

import "sync/atomic"

// DefaultCeiling is the lookup ceiling used when none is configured.
const DefaultCeiling = 100

// Budget counts external search calls made during a run against a fixed ceiling.
//
// The counter only grows. TryAcquire is a compare-and-swap so that concurrent
// callers can never push the counter past the ceiling.
type Budget struct {
	ceiling int64
	used    atomic.Int64
}

// NewBudget returns a budget allowing ceiling calls. A negative ceiling is treated as zero.
func NewBudget(ceiling int) *Budget {
	if ceiling < 0 {
		ceiling = 0
	}
	return &Budget{ceiling: int64(ceiling)}
}

// TryAcquire records one call and returns its 1-based number, or false if the
// ceiling has been reached.
func (b *Budget) TryAcquire() (int, bool) {
	for {
		cur := b.used.Load()
		if cur >= b.ceiling {
			return int(cur), false
		}
		if b.used.CompareAndSwap(cur, cur+1) {
			return int(cur + 1), true
		}
	}
}

// Exhausted reports whether no further calls may be issued.
func (b *Budget) Exhausted() bool {
	return b.used.Load() >= b.ceiling
}

// Used returns the number of calls made so far.
func (b *Budget) Used() int {
	return int(b.used.Load())
}

// Ceiling returns the configured maximum.
func (b *Budget) Ceiling() int {
	return int(b.ceiling)
}
