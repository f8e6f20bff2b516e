package pipeline

import (
	"testing"

	"github.com/mohammad-safakhou/jobradar/models"
)

var defaultPriority = []models.Source{models.SourceLinkedIn, models.SourceIndeed, models.SourceGlassdoor}

func TestDeduplicate_CollapsesSameApplyLink(t *testing.T) {
	listings := []models.JobListing{
		{ID: "1", JobTitle: "Engineer", ApplyLink: "https://x.com/jobs/1", Source: models.SourceIndeed, Description: "short"},
		{ID: "2", JobTitle: "Engineer", ApplyLink: "https://x.com/jobs/1", Source: models.SourceGlassdoor, Description: "a much longer description"},
		{ID: "3", JobTitle: "Other", ApplyLink: "https://x.com/jobs/2", Source: models.SourceIndeed},
	}
	got := Deduplicate(listings, defaultPriority)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
	if got[0].ID != "2" {
		t.Fatalf("expected richer duplicate to win, got %s", got[0].ID)
	}
	if got[1].ID != "3" {
		t.Fatalf("first-seen order not preserved: %s", got[1].ID)
	}
}

func TestDeduplicate_TieBrokenBySourcePriority(t *testing.T) {
	listings := []models.JobListing{
		{ID: "gd", JobTitle: "Engineer", ApplyLink: "https://x.com/jobs/1", Source: models.SourceGlassdoor, Description: "same"},
		{ID: "li", JobTitle: "Engineer", ApplyLink: "https://x.com/jobs/1", Source: models.SourceLinkedIn, Description: "same"},
	}
	got := Deduplicate(listings, defaultPriority)
	if len(got) != 1 || got[0].ID != "li" {
		t.Fatalf("expected LinkedIn listing to win the tie, got %+v", got)
	}
}

func TestDeduplicate_FallsBackToTitleCompanyLocation(t *testing.T) {
	listings := []models.JobListing{
		{ID: "1", JobTitle: "Backend Engineer", Company: "Acme", Location: "Berlin", Source: models.SourceIndeed},
		{ID: "2", JobTitle: "backend  engineer", Company: "ACME", Location: "berlin", Source: models.SourceGlassdoor},
		{ID: "3", JobTitle: "Backend Engineer", Company: "Acme", Location: "Munich", Source: models.SourceIndeed},
	}
	got := Deduplicate(listings, defaultPriority)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
}

func TestDeduplicate_DifferentLinksStaySeparate(t *testing.T) {
	listings := []models.JobListing{
		{ID: "1", JobTitle: "Engineer", Company: "Acme", ApplyLink: "https://a.com/1", Source: models.SourceIndeed},
		{ID: "2", JobTitle: "Engineer", Company: "Acme", ApplyLink: "https://b.com/1", Source: models.SourceIndeed},
	}
	if got := Deduplicate(listings, defaultPriority); len(got) != 2 {
		t.Fatalf("listings with different apply links must both survive, got %d", len(got))
	}
}

func TestDeduplicate_UnconfiguredSourceSortsLast(t *testing.T) {
	listings := []models.JobListing{
		{ID: "gd", JobTitle: "Engineer", ApplyLink: "https://x.com/1", Source: models.SourceGlassdoor, Description: "same"},
		{ID: "in", JobTitle: "Engineer", ApplyLink: "https://x.com/1", Source: models.SourceIndeed, Description: "same"},
	}
	got := Deduplicate(listings, []models.Source{models.SourceIndeed})
	if len(got) != 1 || got[0].ID != "in" {
		t.Fatalf("expected configured source to win, got %+v", got)
	}
}
