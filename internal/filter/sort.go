package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey names the single active ordering.
type SortKey string

const (
	SortNone    SortKey = ""
	SortUpdated SortKey = "updated"
	SortCreated SortKey = "created"
	SortDue     SortKey = "due"
	SortStatus  SortKey = "status"
	SortTitle   SortKey = "title"
)

// SortKeys lists the accepted keys in display order.
var SortKeys = []SortKey{SortUpdated, SortCreated, SortDue, SortStatus, SortTitle}

// ParseSortKey accepts a key name, "due-date" as an alias, or "none".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "updated":
		return SortUpdated, nil
	case "created":
		return SortCreated, nil
	case "due", "due-date":
		return SortDue, nil
	case "status":
		return SortStatus, nil
	case "title":
		return SortTitle, nil
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

// Sort is a sort specification. Updated and created order most recent
// first, due soonest first, status and title ascending by collation.
// Reverse flips the direction but missing values always come last.
type Sort struct {
	Key     SortKey
	Reverse bool
	Locale  language.Tag
}

// Apply sorts tasks in place. Ties keep their input order.
func (s Sort) Apply(tasks []domain.Task) {
	switch s.Key {
	case SortUpdated:
		sortByTime(tasks, UpdatedTime, !s.Reverse)
	case SortCreated:
		sortByTime(tasks, func(t *domain.Task) *time.Time { return t.CreatedAt }, !s.Reverse)
	case SortDue:
		sortByTime(tasks, func(t *domain.Task) *time.Time { return t.DueDate }, s.Reverse)
	case SortStatus:
		s.sortByString(tasks, func(t *domain.Task) string { return string(t.Status) })
	case SortTitle:
		s.sortByString(tasks, func(t *domain.Task) string { return t.Title })
	}
}

func sortByTime(tasks []domain.Task, get func(*domain.Task) *time.Time, desc bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := get(&tasks[i]), get(&tasks[j])

		// nil last, whatever the direction
		if (a == nil) != (b == nil) {
			return a != nil
		}
		if a == nil || a.Equal(*b) {
			return false
		}
		if desc {
			return a.After(*b)
		}
		return a.Before(*b)
	})
}

func (s Sort) sortByString(tasks []domain.Task, get func(*domain.Task) string) {
	c := collate.New(s.Locale)
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := get(&tasks[i]), get(&tasks[j])

		if (a == "") != (b == "") {
			return a != ""
		}
		cmp := c.CompareString(a, b)
		if s.Reverse {
			return cmp > 0
		}
		return cmp < 0
	})
}
