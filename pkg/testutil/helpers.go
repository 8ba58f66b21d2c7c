// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/cone-expert/internal/history"
)

// FindEntry finds a history entry by sequence number.
// Returns a pointer to the entry if found, nil otherwise.
func FindEntry(entries []history.Entry, sequence int) *history.Entry {
	for i := range entries {
		if entries[i].Sequence == sequence {
			return &entries[i]
		}
	}
	return nil
}

