package services

import (
	"context"
	"sort"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
)

// MonthGroup holds the entries created in one calendar month (YYYY-MM, UTC).
type MonthGroup struct {
	Month   string                `json:"month"`
	Entries []models.JournalEntry `json:"entries"`
}

// Dashboard is the owner's own view of their journal.
type Dashboard struct {
	Tags   []string     `json:"tags"`
	Tag    string       `json:"tag,omitempty"`
	Groups []MonthGroup `json:"groups"`
	Total  int          `json:"total"`
}

// Dashboard lists all of caller's entries grouped by month, newest month
// first. Tags lists every tag used across the entries; a non-empty tag
// restricts the groups to entries carrying it.
func (s *JournalService) Dashboard(ctx context.Context, caller, tag string) (*Dashboard, error) {
	if caller == "" {
		return nil, ErrUnauthorized
	}
	entries, err := s.journal.ListEntriesByAuthor(ctx, caller)
	if err != nil {
		return nil, storeErr("list entries", err)
	}

	d := &Dashboard{Tag: tag, Tags: collectTags(entries), Groups: []MonthGroup{}}
	for _, e := range entries {
		if tag != "" && !hasTag(e, tag) {
			continue
		}
		month := e.CreatedAt.UTC().Format("2006-01")
		if n := len(d.Groups); n > 0 && d.Groups[n-1].Month == month {
			d.Groups[n-1].Entries = append(d.Groups[n-1].Entries, e)
		} else {
			d.Groups = append(d.Groups, MonthGroup{Month: month, Entries: []models.JournalEntry{e}})
		}
		d.Total++
	}
	return d, nil
}

func collectTags(entries []models.JournalEntry) []string {
	seen := map[string]struct{}{}
	tags := []string{}
	for _, e := range entries {
		for _, t := range e.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}

func hasTag(e models.JournalEntry, tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
