package indeed

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

// Adapter fetches listings from the Indeed publisher API.
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

func (a *Adapter) Name() models.Source { return models.SourceIndeed }

type searchResponse struct {
	Version      int  `json:"version"`
	TotalResults *int `json:"totalResults"`
	Results      []struct {
		JobTitle          string `json:"jobtitle"`
		Company           string `json:"company"`
		FormattedLocation string `json:"formattedLocationFull"`
		Snippet           string `json:"snippet"`
		URL               string `json:"url"`
		JobType           string `json:"jobType"`
		Date              string `json:"date"`
	} `json:"results"`
}

func (a *Adapter) Fetch(ctx context.Context, criteria models.SearchCriteria) ([]source.RawListing, error) {
	params := url.Values{}
	params.Set("publisher", a.cfg.APIKey)
	params.Set("format", "json")
	params.Set("v", "2")
	params.Set("q", query(criteria))
	if criteria.Location != "" {
		params.Set("l", criteria.Location)
	}
	if a.cfg.MaxResults > 0 {
		params.Set("limit", fmt.Sprint(a.cfg.MaxResults))
	}

	var resp searchResponse
	if err := a.http.DoJSON(ctx, "GET", a.cfg.Endpoint+"?"+params.Encode(), nil, nil, &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", source.ErrSourceTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", source.ErrSourceUnavailable, err)
	}
	// The publisher API always reports totalResults; its absence means the
	// payload is no longer the shape we know how to read.
	if resp.TotalResults == nil {
		return nil, fmt.Errorf("%w: missing totalResults in response", source.ErrSourceFormatChanged)
	}

	out := make([]source.RawListing, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, source.RawListing{
			Source: models.SourceIndeed,
			Fields: map[string]string{
				"jobtitle": r.JobTitle,
				"company":  r.Company,
				"location": r.FormattedLocation,
				"snippet":  r.Snippet,
				"url":      r.URL,
				"jobType":  r.JobType,
				"date":     r.Date,
			},
			FetchedAt: time.Now(),
		})
	}
	return out, nil
}

func query(criteria models.SearchCriteria) string {
	parts := []string{criteria.Position}
	parts = append(parts, criteria.Skills...)
	return strings.Join(parts, " ")
}
