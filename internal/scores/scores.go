// Package scores keeps the ranked high-score list.
package scores

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultLimit is the number of entries kept on the list.
const DefaultLimit = 5

// MaxNameLength is the maximum stored length of a player name, in runes.
const MaxNameLength = 16

// AnonymousName replaces empty player names.
const AnonymousName = "Anonymous"

// ErrClosed is returned by a store that has been closed.
var ErrClosed = errors.New("score store closed")

// Entry is one row of the high-score list.
type Entry struct {
	Rank      int       `json:"rank" msgpack:"rank"`
	Name      string    `json:"name" msgpack:"name"`
	Score     int       `json:"score" msgpack:"score"`
	Timestamp time.Time `json:"timestamp" msgpack:"ts"`
}

// Store persists the high-score list.
type Store interface {
	// Record adds an entry and returns the updated ranked list.
	// Entries that do not make the list are dropped.
	Record(ctx context.Context, e Entry) ([]Entry, error)
	// Top returns the ranked list, best first.
	Top(ctx context.Context) ([]Entry, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// CleanName trims a player name to something safe to store and display.
func CleanName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return AnonymousName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}

// rank sorts entries best first and assigns 1-based ranks. Equal scores
// keep the earlier entry ahead.
func rank(entries []Entry, limit int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
