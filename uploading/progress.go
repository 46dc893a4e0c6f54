package uploading

import (
	"sync"
)

type ProgressFunc func(done int, total int)

type ByteProgressFunc func(doneBytes int64, totalBytes int64)

// progressCounter counts terminal items. Increments from concurrent workers
// serialize on the mutex so the callback always sees a strictly increasing
// count.
type progressCounter struct {
	mu    sync.Mutex
	done  int
	total int
	fn    ProgressFunc
}

func newProgressCounter(total int, fn ProgressFunc) *progressCounter {
	return &progressCounter{total: total, fn: fn}
}

func (p *progressCounter) increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.fn != nil {
		p.fn(p.done, p.total)
	}
}

// byteAccumulator tracks completed bytes for the chunked path. Only finished
// parts are counted, and the callback only ever sees the high-water mark, so
// a whole-file fallback restarting the session never makes reported progress
// regress.
type byteAccumulator struct {
	mu      sync.Mutex
	total   int64
	session int64
	high    int64
	fn      ByteProgressFunc
}

func newByteAccumulator(total int64, fn ByteProgressFunc) *byteAccumulator {
	return &byteAccumulator{total: total, fn: fn}
}

func (a *byteAccumulator) add(n int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session += n
	if a.session > a.high {
		a.high = a.session
		if a.fn != nil {
			a.fn(a.high, a.total)
		}
	}
}

// restart zeroes the session counter for a fresh multipart attempt without
// touching the reported high-water mark.
func (a *byteAccumulator) restart() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = 0
}
