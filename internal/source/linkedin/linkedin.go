package linkedin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/internal/source"
	"github.com/mohammad-safakhou/jobradar/models"
)

// Credentials for the board login flow. Loading them is the caller's problem;
// the adapter only carries them to the browser.
type Credentials struct {
	Email    string
	Password string
}

// Session is an opaque authenticated browser session. It lives for one Fetch
// and is torn down with it; sessions are never shared between requests.
type Session struct {
	ID string
}

// Browser is the narrow boundary to the browser-automation layer. The
// chromedp implementation lives in fetch.go; tests substitute a fake.
type Browser interface {
	EstablishSession(ctx context.Context, creds Credentials) (Session, error)
	FetchListings(ctx context.Context, sess Session, criteria models.SearchCriteria) ([]source.RawListing, error)
	CloseSession(ctx context.Context, sess Session) error
}

// Adapter fetches LinkedIn listings through a headless browser session.
type Adapter struct {
	cfg     config.LinkedInConfig
	browser Browser
	logger  *log.Logger
}

func New(cfg config.LinkedInConfig, browser Browser, logger *log.Logger) *Adapter {
	if browser == nil {
		browser = NewChromeBrowser(cfg.MaxResults)
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[LINKEDIN] ", log.LstdFlags)
	}
	return &Adapter{cfg: cfg, browser: browser, logger: logger}
}

func (a *Adapter) Name() models.Source { return models.SourceLinkedIn }

// Fetch establishes a session, pulls the search results and tears the
// session down before returning. Error classes follow the shared taxonomy so
// the orchestrator can treat every adapter the same way.
func (a *Adapter) Fetch(ctx context.Context, criteria models.SearchCriteria) ([]source.RawListing, error) {
	sess, err := a.browser.EstablishSession(ctx, Credentials{Email: a.cfg.Email, Password: a.cfg.Password})
	if err != nil {
		return nil, classify(fmt.Errorf("establish session: %w", err))
	}
	defer func() {
		if cerr := a.browser.CloseSession(context.WithoutCancel(ctx), sess); cerr != nil {
			a.logger.Printf("close session: %v", cerr)
		}
	}()

	raws, err := a.browser.FetchListings(ctx, sess, criteria)
	if err != nil {
		return nil, classify(fmt.Errorf("fetch listings: %w", err))
	}
	a.logger.Printf("fetched %d listings for %q", len(raws), criteria.Position)
	return raws, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", source.ErrSourceTimeout, err)
	case errors.Is(err, source.ErrSourceFormatChanged):
		return err
	default:
		return fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
	}
}

// SearchURL builds the public jobs search URL for the criteria.
func SearchURL(criteria models.SearchCriteria) string {
	keywords := criteria.Position
	if len(criteria.Skills) > 0 {
		keywords += " " + strings.Join(criteria.Skills, " ")
	}
	params := url.Values{}
	params.Set("keywords", keywords)
	if criteria.Location != "" {
		params.Set("location", criteria.Location)
	}
	if strings.EqualFold(criteria.JobNature, "remote") {
		params.Set("f_WT", "2")
	}
	return "https://www.linkedin.com/jobs/search/?" + params.Encode()
}

// rawFromCard converts one parsed job card into a RawListing.
func rawFromCard(c jobCard) source.RawListing {
	return source.RawListing{
		Source: models.SourceLinkedIn,
		Fields: map[string]string{
			"title":       c.Title,
			"companyName": c.Company,
			"location":    c.Location,
			"link":        c.Link,
			"description": c.Description,
		},
		FetchedAt: time.Now(),
	}
}
