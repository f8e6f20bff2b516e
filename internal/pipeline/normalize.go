package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/jobradar/internal/source"
	"github.com/mohammad-safakhou/jobradar/models"
	"golang.org/x/text/unicode/norm"
)

// ErrMalformedListing marks a raw listing that cannot be mapped into the
// canonical schema. Such listings are logged and dropped, never fatal to
// the batch they arrived in.
var ErrMalformedListing = errors.New("malformed listing")

var (
	salaryPattern     = regexp.MustCompile(`(?i)(?:[\$£€₨]|PKR|USD|EUR|GBP|INR)\s*\d[\d,.]*\s*[kK]?(?:\s*(?:-|to)\s*(?:[\$£€₨]|PKR|USD|EUR|GBP|INR)?\s*\d[\d,.]*\s*[kK]?)?`)
	experiencePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:\+|-\s*\d+)?\s*(?:years?|yrs?)(?:\s+of)?\s+experience`)
	naturePattern     = regexp.MustCompile(`(?i)\b(remote|hybrid|on-?site)\b`)
)

// fieldMap names the raw keys each source uses for the canonical fields.
var fieldMap = map[models.Source]struct {
	title, company, location, link, description, salary, nature string
}{
	models.SourceLinkedIn:  {title: "title", company: "companyName", location: "location", link: "link", description: "description"},
	models.SourceIndeed:    {title: "jobtitle", company: "company", location: "location", link: "url", description: "snippet", nature: "jobType"},
	models.SourceGlassdoor: {title: "jobTitle", company: "employer", location: "location", link: "jobLink", description: "description", salary: "salary", nature: "jobType"},
}

// Normalize maps one raw listing into the canonical schema. Pure except for
// the generated listing ID.
func Normalize(raw source.RawListing) (models.JobListing, error) {
	m, ok := fieldMap[raw.Source]
	if !ok {
		return models.JobListing{}, fmt.Errorf("%w: unknown source %q", ErrMalformedListing, raw.Source)
	}

	title := Sanitize(raw.Fields[m.title])
	company := Sanitize(raw.Fields[m.company])
	if title == "" && company == "" {
		return models.JobListing{}, fmt.Errorf("%w: no title or company", ErrMalformedListing)
	}

	link, err := NormalizeApplyLink(raw.Fields[m.link], raw.Source)
	if err != nil {
		return models.JobListing{}, fmt.Errorf("%w: apply link: %v", ErrMalformedListing, err)
	}

	description := Sanitize(raw.Fields[m.description])
	salary := Sanitize(raw.Fields[m.salary])
	if salary == "" {
		salary = extractSalary(description)
	}
	nature := Sanitize(raw.Fields[m.nature])
	if nature == "" {
		nature = extractJobNature(description)
	}

	return models.JobListing{
		ID:          uuid.NewString(),
		JobTitle:    title,
		Company:     company,
		Experience:  extractExperience(description),
		JobNature:   nature,
		Location:    Sanitize(raw.Fields[m.location]),
		Salary:      salary,
		ApplyLink:   link,
		Description: description,
		Source:      raw.Source,
	}, nil
}

// NormalizeBatch normalizes a whole source batch, dropping malformed
// listings and reporting how many were dropped.
func NormalizeBatch(raws []source.RawListing) (listings []models.JobListing, dropped int) {
	for _, raw := range raws {
		job, err := Normalize(raw)
		if err != nil {
			dropped++
			continue
		}
		listings = append(listings, job)
	}
	return listings, dropped
}

// baseURL per source for resolving relative apply links.
var baseURL = map[models.Source]string{
	models.SourceLinkedIn:  "https://www.linkedin.com",
	models.SourceIndeed:    "https://www.indeed.com",
	models.SourceGlassdoor: "https://www.glassdoor.com",
}

// NormalizeApplyLink resolves the link against the source's site, lowercases
// scheme and host and strips query and fragment, so the same posting hashes
// to the same key no matter which tracking parameters it arrived with.
func NormalizeApplyLink(link string, src models.Source) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() {
		base, err := url.Parse(baseURL[src])
		if err != nil {
			return "", err
		}
		u = base.ResolveReference(u)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// Sanitize applies NFKC normalization, strips control characters and
// collapses whitespace.
func Sanitize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func extractSalary(description string) string {
	return strings.TrimSpace(salaryPattern.FindString(description))
}

func extractExperience(description string) string {
	if m := experiencePattern.FindString(description); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

func extractJobNature(description string) string {
	m := naturePattern.FindString(description)
	if m == "" {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(m, "-", ""))
}
