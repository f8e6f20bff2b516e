package pipeline

import (
	"errors"
	"testing"

	"github.com/mohammad-safakhou/jobradar/internal/source"
	"github.com/mohammad-safakhou/jobradar/models"
)

func TestNormalize_MapsIndeedFields(t *testing.T) {
	raw := source.RawListing{
		Source: models.SourceIndeed,
		Fields: map[string]string{
			"jobtitle": "Backend Engineer",
			"company":  "Acme",
			"location": "Berlin",
			"url":      "https://de.indeed.com/viewjob?jk=abc&from=serp",
			"snippet":  "We need 3 years experience with Go. Fully remote.",
			"jobType":  "fulltime",
		},
	}
	job, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.JobTitle != "Backend Engineer" || job.Company != "Acme" {
		t.Fatalf("title/company not mapped: %+v", job)
	}
	if job.ApplyLink != "https://de.indeed.com/viewjob" {
		t.Fatalf("apply link not normalized: %q", job.ApplyLink)
	}
	if job.Experience != "3 years experience" {
		t.Fatalf("experience not extracted: %q", job.Experience)
	}
	if job.ID == "" {
		t.Fatalf("expected a generated listing id")
	}
}

func TestNormalize_RejectsListingWithoutTitleAndCompany(t *testing.T) {
	raw := source.RawListing{
		Source: models.SourceIndeed,
		Fields: map[string]string{"url": "https://example.com/job/1"},
	}
	_, err := Normalize(raw)
	if !errors.Is(err, ErrMalformedListing) {
		t.Fatalf("expected ErrMalformedListing, got %v", err)
	}
}

func TestNormalize_RejectsUnknownSource(t *testing.T) {
	_, err := Normalize(source.RawListing{Source: models.Source("Monster")})
	if !errors.Is(err, ErrMalformedListing) {
		t.Fatalf("expected ErrMalformedListing, got %v", err)
	}
}

func TestNormalize_ExtractsSalaryAndNatureFromDescription(t *testing.T) {
	raw := source.RawListing{
		Source: models.SourceLinkedIn,
		Fields: map[string]string{
			"title":       "Engineer",
			"companyName": "Acme",
			"link":        "/jobs/view/123/",
			"description": "Hybrid role paying $90,000 - $120,000 per year.",
		},
	}
	job, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Salary == "" {
		t.Fatalf("salary not extracted from description")
	}
	if job.JobNature != "hybrid" {
		t.Fatalf("expected hybrid, got %q", job.JobNature)
	}
	if job.ApplyLink != "https://www.linkedin.com/jobs/view/123" {
		t.Fatalf("relative link not resolved: %q", job.ApplyLink)
	}
}

func TestNormalizeBatch_DropsMalformedAndKeepsRest(t *testing.T) {
	raws := []source.RawListing{
		{Source: models.SourceIndeed, Fields: map[string]string{"jobtitle": "A", "company": "X", "url": "https://x.com/a"}},
		{Source: models.SourceIndeed, Fields: map[string]string{"url": "https://x.com/b"}},
		{Source: models.SourceIndeed, Fields: map[string]string{"jobtitle": "C", "company": "Z", "url": "https://x.com/c"}},
	}
	listings, dropped := NormalizeBatch(raws)
	if dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", dropped)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
}

func TestNormalizeApplyLink_StripsTrackingAndTrailingSlash(t *testing.T) {
	got, err := NormalizeApplyLink("HTTPS://WWW.Example.COM/jobs/1/?utm_source=feed#apply", models.SourceIndeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://www.example.com/jobs/1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizeApplyLink_EmptyStaysEmpty(t *testing.T) {
	got, err := NormalizeApplyLink("  ", models.SourceLinkedIn)
	if err != nil || got != "" {
		t.Fatalf("expected empty result, got %q err %v", got, err)
	}
}

func TestSanitize_CollapsesWhitespaceAndStripsControls(t *testing.T) {
	got := Sanitize("Senior\x00  Go\tEngineer\n (f/m/d)")
	want := "Senior Go Engineer (f/m/d)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSanitize_AppliesCompatibilityNormalization(t *testing.T) {
	// Fullwidth forms should fold to their ASCII equivalents.
	got := Sanitize("Ｇｏ developer")
	want := "Go developer"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
