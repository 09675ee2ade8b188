package store

import (
	"sync"
	"time"

	"github.com/autoasmr/api/internal/model"
)

// DefaultMaxEntries is the process-wide activity cap.
const DefaultMaxEntries = 1000

// ActivityLog is an append-only ring of the most recent entries across all
// jobs. Once full, every append evicts the oldest entry.
type ActivityLog struct {
	mu    sync.Mutex
	buf   []model.ActivityEntry
	start int
	size  int
	now   func() time.Time
	sinks []func(model.ActivityEntry)
}

// NewActivityLog keeps at most maxEntries entries; values below 1 fall back
// to DefaultMaxEntries. now stamps each entry.
func NewActivityLog(maxEntries int, now func() time.Time) *ActivityLog {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	if now == nil {
		now = time.Now
	}
	return &ActivityLog{
		buf: make([]model.ActivityEntry, maxEntries),
		now: now,
	}
}

// Subscribe registers fn to receive every entry after it is appended.
// fn runs on the appending goroutine and must not block.
func (l *ActivityLog) Subscribe(fn func(model.ActivityEntry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, fn)
}

// Append records a message for jobID and returns the stored entry.
func (l *ActivityLog) Append(jobID string, level model.LogLevel, message string) model.ActivityEntry {
	entry := model.ActivityEntry{
		Timestamp: l.now(),
		JobID:     jobID,
		Message:   message,
		Level:     level,
	}

	l.mu.Lock()
	capacity := len(l.buf)
	if l.size < capacity {
		l.buf[(l.start+l.size)%capacity] = entry
		l.size++
	} else {
		l.buf[l.start] = entry
		l.start = (l.start + 1) % capacity
	}
	sinks := l.sinks
	l.mu.Unlock()

	for _, fn := range sinks {
		fn(entry)
	}
	return entry
}

// Info, Success and Error are shorthands for Append.
func (l *ActivityLog) Info(jobID, message string) {
	l.Append(jobID, model.LogLevelInfo, message)
}

func (l *ActivityLog) Success(jobID, message string) {
	l.Append(jobID, model.LogLevelSuccess, message)
}

func (l *ActivityLog) Error(jobID, message string) {
	l.Append(jobID, model.LogLevelError, message)
}

// Len returns the number of retained entries.
func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Cap returns the retention limit.
func (l *ActivityLog) Cap() int {
	return len(l.buf)
}

// All returns every retained entry, oldest first.
func (l *ActivityLog) All() []model.ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.ActivityEntry, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.at(i)
	}
	return out
}

// Recent returns up to limit entries, newest first.
func (l *ActivityLog) Recent(limit int) []model.ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > l.size {
		limit = l.size
	}
	out := make([]model.ActivityEntry, 0, limit)
	for i := l.size - 1; i >= l.size-limit; i-- {
		out = append(out, l.at(i))
	}
	return out
}

// ForJob returns the retained entries for jobID, oldest first.
func (l *ActivityLog) ForJob(jobID string) []model.ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.ActivityEntry
	for i := 0; i < l.size; i++ {
		if e := l.at(i); e.JobID == jobID {
			out = append(out, e)
		}
	}
	return out
}

// at must be called with mu held.
func (l *ActivityLog) at(i int) model.ActivityEntry {
	return l.buf[(l.start+i)%len(l.buf)]
}
