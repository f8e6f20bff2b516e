package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrResultNotFound is returned when no cached result exists for a fingerprint
var ErrResultNotFound = errors.New("result not found")

// ErrInvalidCriteria is returned when mandatory criteria fields are missing
var ErrInvalidCriteria = errors.New("invalid search criteria")

// Source identifies the job board a listing came from
type Source string

const (
	SourceLinkedIn  Source = "LinkedIn"
	SourceIndeed    Source = "Indeed"
	SourceGlassdoor Source = "Glassdoor"
)

// SearchCriteria is the caller's search request. Fields are fixed at
// construction; NewSearchCriteria is the only way to build a valid value.
type SearchCriteria struct {
	Position   string   `json:"position"`
	Experience string   `json:"experience"`
	Salary     string   `json:"salary"`
	JobNature  string   `json:"job_nature"`
	Location   string   `json:"location"`
	Skills     []string `json:"skills"`
}

// NewSearchCriteria validates and constructs criteria. Position and at least
// one non-blank skill are mandatory; the rest are free-form.
func NewSearchCriteria(position, experience, salary, jobNature, location string, skills []string) (SearchCriteria, error) {
	if strings.TrimSpace(position) == "" {
		return SearchCriteria{}, fmt.Errorf("position is required: %w", ErrInvalidCriteria)
	}
	var cleaned []string
	for _, s := range skills {
		if t := strings.TrimSpace(s); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return SearchCriteria{}, fmt.Errorf("at least one skill is required: %w", ErrInvalidCriteria)
	}
	return SearchCriteria{
		Position:   strings.TrimSpace(position),
		Experience: strings.TrimSpace(experience),
		Salary:     strings.TrimSpace(salary),
		JobNature:  strings.TrimSpace(jobNature),
		Location:   strings.TrimSpace(location),
		Skills:     cleaned,
	}, nil
}

// Fingerprint returns a stable cache key for the criteria. Fields are
// lower-cased and whitespace-collapsed and skills are sorted, so two
// requests differing only in casing, spacing or skill order share an entry.
func (c SearchCriteria) Fingerprint() string {
	skills := make([]string, len(c.Skills))
	for i, s := range c.Skills {
		skills[i] = canonField(s)
	}
	sort.Strings(skills)

	parts := []string{
		canonField(c.Position),
		canonField(c.Experience),
		canonField(c.Salary),
		canonField(c.JobNature),
		canonField(c.Location),
		strings.Join(skills, ","),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func canonField(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// JobListing is the canonical listing shape shared by every source.
type JobListing struct {
	ID             string  `json:"id"`
	JobTitle       string  `json:"job_title"`
	Company        string  `json:"company"`
	Experience     string  `json:"experience,omitempty"`
	JobNature      string  `json:"job_nature,omitempty"`
	Location       string  `json:"location,omitempty"`
	Salary         string  `json:"salary,omitempty"`
	ApplyLink      string  `json:"apply_link"`
	Description    string  `json:"description,omitempty"`
	Source         Source  `json:"source"`
	Summary        string  `json:"summary,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}

// SourceFailure records one source's failure during a pipeline run. Failures
// below the whole-request level are notes on the result, not errors.
type SourceFailure struct {
	Source Source `json:"source"`
	Reason string `json:"reason"`
}

// RankedResult is the final ordered result set for one request. It is built
// once and never mutated afterwards.
type RankedResult struct {
	Jobs      []JobListing    `json:"relevant_jobs"`
	Ranked    bool            `json:"ranked"`
	Failures  []SourceFailure `json:"source_failures,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
