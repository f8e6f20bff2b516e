package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/internal/pipeline"
	"github.com/mohammad-safakhou/jobradar/internal/rank"
	"github.com/mohammad-safakhou/jobradar/internal/source"
	"github.com/mohammad-safakhou/jobradar/internal/source/glassdoor"
	"github.com/mohammad-safakhou/jobradar/internal/source/indeed"
	"github.com/mohammad-safakhou/jobradar/internal/source/linkedin"
	"github.com/mohammad-safakhou/jobradar/models"
	"github.com/mohammad-safakhou/jobradar/provider"
	"github.com/mohammad-safakhou/jobradar/repository"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run wires the dependencies and serves the API until the listener stops.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	orch, cache, err := BuildOrchestrator(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	sh := &SearchHandler{Orch: orch}
	sh.Register(e.Group("/api"))

	addr := cfg.General.Listen
	if addr == "" {
		addr = ":10011"
	}
	baseLogger.Printf("listening on %s", addr)
	return e.Start(addr)
}

// BuildOrchestrator assembles the full pipeline from configuration. The
// returned cache must be closed by the caller.
func BuildOrchestrator(ctx context.Context, cfg *config.Config) (*pipeline.Orchestrator, repository.ResultCache, error) {
	cache, err := repository.NewResultCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("result cache: %w", err)
	}

	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		cache.Close()
		return nil, nil, fmt.Errorf("llm provider: %w", err)
	}

	priority := sourcePriority(cfg.Sources.Priority)
	ranker := rank.NewRanker(llm, cfg.Ranking, cfg.LLM, priority, nil)
	summarizer := rank.NewSummarizer(llm, cfg.Ranking, nil)

	adapters := buildAdapters(cfg)
	orch, err := pipeline.NewOrchestrator(adapters, ranker, summarizer, cache, priority, cfg.Sources.FetchTimeout, nil)
	if err != nil {
		cache.Close()
		return nil, nil, err
	}
	return orch, cache, nil
}

// buildAdapters registers every board whose credentials are configured.
func buildAdapters(cfg *config.Config) []source.Adapter {
	httpc := source.NewHTTPClient(cfg.Sources.FetchTimeout, cfg.LLM.MaxRetries, cfg.LLM.Backoff)
	var adapters []source.Adapter
	if cfg.Sources.LinkedIn.Email != "" {
		adapters = append(adapters, linkedin.New(cfg.Sources.LinkedIn, nil, nil))
	}
	if cfg.Sources.Indeed.APIKey != "" {
		adapters = append(adapters, indeed.New(cfg.Sources.Indeed, httpc))
	}
	if cfg.Sources.Glassdoor.APIKey != "" {
		adapters = append(adapters, glassdoor.New(cfg.Sources.Glassdoor, httpc))
	}
	return adapters
}

func sourcePriority(names []string) []models.Source {
	out := make([]models.Source, 0, len(names))
	for _, n := range names {
		out = append(out, models.Source(n))
	}
	return out
}

// Searcher is what the handler needs from the pipeline.
type Searcher interface {
	Search(ctx context.Context, criteria models.SearchCriteria, refresh bool) (models.RankedResult, error)
}

// SearchHandler exposes the single search operation.
type SearchHandler struct {
	Orch Searcher
}

func (h *SearchHandler) Register(g *echo.Group) {
	g.POST("/search", h.Search)
}

// searchRequest mirrors the public request shape. Skills may arrive either
// as a JSON array or as one comma-separated string.
type searchRequest struct {
	Position   string          `json:"position"`
	Experience string          `json:"experience"`
	Salary     string          `json:"salary"`
	JobNature  string          `json:"jobNature"`
	Location   string          `json:"location"`
	Skills     json.RawMessage `json:"skills"`
}

func (h *SearchHandler) Search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	skills, err := parseSkills(req.Skills)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "skills must be a string or an array of strings")
	}

	criteria, err := models.NewSearchCriteria(req.Position, req.Experience, req.Salary, req.JobNature, req.Location, skills)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	refresh := c.QueryParam("refresh") == "true"
	started := time.Now()
	result, err := h.Orch.Search(c.Request().Context(), criteria, refresh)
	if err != nil {
		if errors.Is(err, pipeline.ErrAllSourcesUnavailable) {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return err
	}
	c.Response().Header().Set("X-Search-Duration", time.Since(started).String())
	return c.JSON(http.StatusOK, result)
}

func parseSkills(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil, err
	}
	var out []string
	for _, s := range strings.Split(joined, ",") {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
