// Package history records solved calculations for a single session.
package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/cone-expert/pkg/units"
)

// Entry is an immutable snapshot of one solved calculation. Dimensions are
// in millimeters; Unit is the unit the user entered them in.
type Entry struct {
	ID            string     `json:"id" yaml:"id"`
	Sequence      int        `json:"sequence" yaml:"sequence"`
	Timestamp     time.Time  `json:"timestamp" yaml:"timestamp"`
	AngleDegrees  float64    `json:"angle" yaml:"angle"`
	LargeDiameter float64    `json:"large" yaml:"large"`
	SmallDiameter float64    `json:"small" yaml:"small"`
	Length        float64    `json:"length" yaml:"length"`
	TaperRatio    float64    `json:"taperRatio" yaml:"taperRatio"`
	Unit          units.Unit `json:"unit" yaml:"unit"`
}

// Ledger is an append-only record of entries. Storage is unbounded; callers
// cap what they display with RecentFirst.
//
// A Ledger is owned by one session and is not safe for concurrent use.
type Ledger struct {
	entries []Entry
	nextSeq int
	now     func() time.Time
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{nextSeq: 1, now: time.Now}
}

// Append adds entry to the end of the ledger and returns the stored copy.
// Sequence is always assigned by the ledger; ID and Timestamp are filled in
// when unset.
func (l *Ledger) Append(entry Entry) Entry {
	if l.nextSeq == 0 {
		l.nextSeq = 1
	}
	if l.now == nil {
		l.now = time.Now
	}

	entry.Sequence = l.nextSeq
	l.nextSeq++
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	if entry.Unit == "" {
		entry.Unit = units.Millimeter
	}

	l.entries = append(l.entries, entry)
	return entry
}

// RecentFirst returns up to limit of the most recently appended entries,
// newest first. The returned slice is a copy.
func (l *Ledger) RecentFirst(limit int) []Entry {
	if limit <= 0 || len(l.entries) == 0 {
		return []Entry{}
	}
	if limit > len(l.entries) {
		limit = len(l.entries)
	}

	out := make([]Entry, 0, limit)
	for i := len(l.entries) - 1; i >= len(l.entries)-limit; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Clear removes every entry. Sequence numbers keep increasing afterwards.
func (l *Ledger) Clear() {
	l.entries = nil
}

// Len returns the number of stored entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}
