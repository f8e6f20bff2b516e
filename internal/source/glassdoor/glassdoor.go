package glassdoor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/internal/source"
	"github.com/mohammad-safakhou/jobradar/models"
)

// Adapter fetches listings from the Glassdoor jobs API.
type Adapter struct {
	cfg  config.BoardAPIConfig
	http *source.HTTPClient
}

func New(cfg config.BoardAPIConfig, httpc *source.HTTPClient) *Adapter {
	if httpc == nil {
		httpc = source.NewHTTPClient(15*time.Second, 2, 300*time.Millisecond)
	}
	return &Adapter{cfg: cfg, http: httpc}
}

func (a *Adapter) Name() models.Source { return models.SourceGlassdoor }

type searchResponse struct {
	Success  *bool `json:"success"`
	Response struct {
		JobListings []struct {
			JobTitle    string `json:"jobTitle"`
			Employer    string `json:"employer"`
			Location    string `json:"location"`
			JobLink     string `json:"jobViewUrl"`
			Description string `json:"descriptionFragment"`
			PayLow      string `json:"payLow"`
			PayHigh     string `json:"payHigh"`
			PayCurrency string `json:"payCurrency"`
			JobType     string `json:"employmentType"`
		} `json:"jobListings"`
	} `json:"response"`
}

func (a *Adapter) Fetch(ctx context.Context, criteria models.SearchCriteria) ([]source.RawListing, error) {
	params := url.Values{}
	params.Set("t.k", a.cfg.APIKey)
	params.Set("action", "jobs")
	params.Set("format", "json")
	params.Set("keyword", keyword(criteria))
	if criteria.Location != "" {
		params.Set("locationName", criteria.Location)
	}
	if a.cfg.MaxResults > 0 {
		params.Set("pageSize", fmt.Sprint(a.cfg.MaxResults))
	}

	var resp searchResponse
	if err := a.http.DoJSON(ctx, "GET", a.cfg.Endpoint+"?"+params.Encode(), nil, nil, &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", source.ErrSourceTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
	}
	if resp.Success == nil {
		return nil, fmt.Errorf("%w: missing success flag in response", source.ErrSourceFormatChanged)
	}
	if !*resp.Success {
		return nil, fmt.Errorf("%w: api reported failure", source.ErrSourceUnavailable)
	}

	out := make([]source.RawListing, 0, len(resp.Response.JobListings))
	for _, r := range resp.Response.JobListings {
		salary := ""
		if r.PayLow != "" || r.PayHigh != "" {
			salary = strings.TrimSpace(r.PayLow + " - " + r.PayHigh + " " + r.PayCurrency)
		}
		out = append(out, source.RawListing{
			Source: models.SourceGlassdoor,
			Fields: map[string]string{
				"jobTitle":    r.JobTitle,
				"employer":    r.Employer,
				"location":    r.Location,
				"jobLink":     r.JobLink,
				"description": r.Description,
				"salary":      salary,
				"jobType":     r.JobType,
			},
			FetchedAt: time.Now(),
		})
	}
	return out, nil
}

func keyword(criteria models.SearchCriteria) string {
	parts := []string{criteria.Position}
	parts = append(parts, criteria.Skills...)
	return strings.Join(parts, " ")
}
