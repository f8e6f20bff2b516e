package pipeline

import (
	"strings"

	"github.com/mohammad-safakhou/jobradar/models"
)

// Deduplicate collapses listings that describe the same real job across
// sources. Grouping key is the normalized apply link; listings without one
// fall back to a (title, company, location) similarity key. Within a group
// the listing with the longer description wins, ties broken by source
// priority. First-seen relative order is preserved otherwise.
func Deduplicate(listings []models.JobListing, priority []models.Source) []models.JobListing {
	rank := priorityRank(priority)

	type slot struct {
		listing models.JobListing
		order   int
	}
	bySlot := map[string]*slot{}
	var keys []string

	for i, l := range listings {
		key := dedupeKey(l)
		existing, ok := bySlot[key]
		if !ok {
			bySlot[key] = &slot{listing: l, order: i}
			keys = append(keys, key)
			continue
		}
		if richer(l, existing.listing, rank) {
			// Keep the first-seen position even when a later duplicate wins.
			existing.listing = l
		}
	}

	out := make([]models.JobListing, 0, len(keys))
	for _, key := range keys {
		out = append(out, bySlot[key].listing)
	}
	return out
}

func dedupeKey(l models.JobListing) string {
	if l.ApplyLink != "" {
		return "link|" + l.ApplyLink
	}
	return "sim|" + canon(l.JobTitle) + "|" + canon(l.Company) + "|" + canon(l.Location)
}

func canon(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// richer reports whether candidate should replace current as the group
// representative.
func richer(candidate, current models.JobListing, rank map[models.Source]int) bool {
	if len(candidate.Description) != len(current.Description) {
		return len(candidate.Description) > len(current.Description)
	}
	return rank[candidate.Source] < rank[current.Source]
}

func priorityRank(priority []models.Source) map[models.Source]int {
	rank := make(map[models.Source]int, len(priority))
	for i, s := range priority {
		rank[s] = i
	}
	// Sources missing from the configured order sort last.
	fallback := len(priority)
	for _, s := range []models.Source{models.SourceLinkedIn, models.SourceIndeed, models.SourceGlassdoor} {
		if _, ok := rank[s]; !ok {
			rank[s] = fallback
			fallback++
		}
	}
	return rank
}
