package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"github.com/mohammad-safakhou/jobradar/internal/source"
	"github.com/mohammad-safakhou/jobradar/models"
)

// ChromeBrowser drives a headless Chrome through chromedp. One allocator and
// browser context per session, torn down when the session closes. A single
// ChromeBrowser serves every concurrent request, so the session maps sit
// behind a mutex.
type ChromeBrowser struct {
	MaxResults int

	mu      sync.Mutex
	cancels map[string][]context.CancelFunc
	bctxs   map[string]context.Context
}

func NewChromeBrowser(maxResults int) *ChromeBrowser {
	return &ChromeBrowser{
		MaxResults: maxResults,
		cancels:    map[string][]context.CancelFunc{},
		bctxs:      map[string]context.Context{},
	}
}

func (b *ChromeBrowser) EstablishSession(ctx context.Context, creds Credentials) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("jobradar/1.0 (+contact@example.com)"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	bctx, cancelBrowser := chromedp.NewContext(actx)

	sess := Session{ID: uuid.NewString()}
	b.mu.Lock()
	b.cancels[sess.ID] = []context.CancelFunc{cancelBrowser, cancelAlloc}
	b.bctxs[sess.ID] = bctx
	b.mu.Unlock()

	if creds.Email != "" {
		if err := b.login(bctx, creds); err != nil {
			_ = b.CloseSession(ctx, sess)
			return Session{}, fmt.Errorf("login: %w", err)
		}
	}
	return sess, nil
}

func (b *ChromeBrowser) login(bctx context.Context, creds Credentials) error {
	return chromedp.Run(bctx,
		chromedp.Navigate("https://www.linkedin.com/login"),
		chromedp.WaitVisible(`#username`, chromedp.ByID),
		chromedp.SendKeys(`#username`, creds.Email, chromedp.ByID),
		chromedp.SendKeys(`#password`, creds.Password, chromedp.ByID),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
}

func (b *ChromeBrowser) FetchListings(ctx context.Context, sess Session, criteria models.SearchCriteria) ([]source.RawListing, error) {
	b.mu.Lock()
	bctx, ok := b.bctxs[sess.ID]
	b.mu.Unlock()
	if !ok {
		return nil, errors.New("unknown session")
	}

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(SearchURL(criteria)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}

	cards := parseJobCards(html)
	if len(cards) == 0 && len(html) > 0 {
		// A rendered page with no recognizable cards means the markup moved
		// out from under the extraction rules.
		return nil, fmt.Errorf("%w: no job cards in rendered page", source.ErrSourceFormatChanged)
	}

	max := b.MaxResults
	if max <= 0 || max > len(cards) {
		max = len(cards)
	}
	out := make([]source.RawListing, 0, max)
	for _, c := range cards[:max] {
		if c.Description == "" && c.Link != "" {
			c.Description = b.fetchDescription(bctx, c.Link)
		}
		out = append(out, rawFromCard(c))
	}
	return out, nil
}

// fetchDescription loads the detail page and extracts readable text.
// Best effort: a listing without a description is still usable.
func (b *ChromeBrowser) fetchDescription(bctx context.Context, link string) string {
	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(link),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return ""
	}
	u, uerr := url.Parse(link)
	if uerr != nil {
		u = &url.URL{}
	}
	article, rerr := readability.FromReader(strings.NewReader(html), u)
	if rerr != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func (b *ChromeBrowser) CloseSession(_ context.Context, sess Session) error {
	b.mu.Lock()
	cancels := b.cancels[sess.ID]
	delete(b.cancels, sess.ID)
	delete(b.bctxs, sess.ID)
	b.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	return nil
}

type jobCard struct {
	Title       string
	Company     string
	Location    string
	Link        string
	Description string
}

var (
	cardPattern     = regexp.MustCompile(`(?s)<(?:li|div)[^>]*class="[^"]*(?:base-card|job-search-card|jobs-search-results__list-item)[^"]*"[^>]*>(.*?)</(?:li|div)>`)
	linkPattern     = regexp.MustCompile(`href="(https://www\.linkedin\.com/jobs/view/[^"?]+)`)
	titlePattern    = regexp.MustCompile(`(?s)class="[^"]*(?:base-search-card__title|job-card-list__title)[^"]*"[^>]*>(.*?)<`)
	companyPattern  = regexp.MustCompile(`(?s)class="[^"]*(?:base-search-card__subtitle|job-card-container__company-name)[^"]*"[^>]*>\s*(?:<a[^>]*>)?(.*?)<`)
	locationPattern = regexp.MustCompile(`(?s)class="[^"]*job-search-card__location[^"]*"[^>]*>(.*?)<`)
	tagStripper     = regexp.MustCompile(`<[^>]+>`)
)

// parseJobCards pulls the fields the normalizer needs out of the search page.
func parseJobCards(html string) []jobCard {
	var cards []jobCard
	for _, m := range cardPattern.FindAllStringSubmatch(html, -1) {
		fragment := m[1]
		card := jobCard{
			Title:    cleanFragment(firstGroup(titlePattern, fragment)),
			Company:  cleanFragment(firstGroup(companyPattern, fragment)),
			Location: cleanFragment(firstGroup(locationPattern, fragment)),
			Link:     firstGroup(linkPattern, fragment),
		}
		if card.Title == "" && card.Link == "" {
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}

func cleanFragment(s string) string {
	s = tagStripper.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
