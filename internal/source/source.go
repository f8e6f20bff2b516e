package source

import (
	"context"
	"errors"
	"time"

	"github.com/mohammad-safakhou/jobradar/models"
)

// Failure classes for a whole source. A failed source contributes zero
// listings; the pipeline only fails when every source does.
var (
	ErrSourceUnavailable   = errors.New("source unavailable")
	ErrSourceTimeout       = errors.New("source timeout")
	ErrSourceFormatChanged = errors.New("source format changed")
)

// RawListing is a source-specific bag of fields as scraped. It is owned by
// its adapter until the normalizer maps it into the canonical schema, and
// discarded afterwards.
type RawListing struct {
	Source    models.Source
	Fields    map[string]string
	FetchedAt time.Time
}

// Adapter fetches raw listings for one job board. Implementations are
// independent: the deadline arrives through ctx and a failure in one adapter
// must never affect another. New boards plug in by implementing Adapter;
// nothing else inspects adapter internals.
type Adapter interface {
	Name() models.Source
	Fetch(ctx context.Context, criteria models.SearchCriteria) ([]RawListing, error)
}
