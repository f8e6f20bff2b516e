package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/models"
)

func chatServer(t *testing.T, content string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if capture != nil && len(req.Messages) > 0 {
			*capture = req.Messages[len(req.Messages)-1].Content
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(baseURL string) *Client {
	return NewClient(config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
}

func testCriteria(t *testing.T) models.SearchCriteria {
	t.Helper()
	c, err := models.NewSearchCriteria("Backend Engineer", "2 years", "", "remote", "Berlin", []string{"Go", "Redis"})
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}
	return c
}

func TestRankListings_ParsesScores(t *testing.T) {
	var prompt string
	srv := chatServer(t, `{"scores":[{"listing_id":"a","score":0.91,"hard_excluded":false},{"listing_id":"b","score":0.85,"hard_excluded":true}]}`, &prompt)
	defer srv.Close()

	scores, err := testClient(srv.URL).RankListings(context.Background(), testCriteria(t), []models.JobListing{
		{ID: "a", JobTitle: "Backend Engineer", Company: "Acme"},
		{ID: "b", JobTitle: "Onsite Engineer", Company: "Other"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].ListingID != "a" || scores[0].Score != 0.91 {
		t.Fatalf("first score wrong: %+v", scores[0])
	}
	if !scores[1].HardExcluded {
		t.Fatalf("hard exclusion lost: %+v", scores[1])
	}
	if !strings.Contains(prompt, "Position: Backend Engineer") || !strings.Contains(prompt, "Go, Redis") {
		t.Fatalf("criteria missing from prompt: %s", prompt)
	}
	if !strings.Contains(prompt, "ID: a") || !strings.Contains(prompt, "ID: b") {
		t.Fatalf("listings missing from prompt")
	}
}

func TestRankListings_AcceptsFencedJSON(t *testing.T) {
	srv := chatServer(t, "```json\n{\"scores\":[{\"listing_id\":\"a\",\"score\":0.5}]}\n```", nil)
	defer srv.Close()

	scores, err := testClient(srv.URL).RankListings(context.Background(), testCriteria(t), []models.JobListing{{ID: "a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 0.5 {
		t.Fatalf("fenced JSON not parsed: %+v", scores)
	}
}

func TestRankListings_MalformedResponse(t *testing.T) {
	srv := chatServer(t, "I think listing a is pretty good.", nil)
	defer srv.Close()

	if _, err := testClient(srv.URL).RankListings(context.Background(), testCriteria(t), []models.JobListing{{ID: "a"}}); err == nil {
		t.Fatalf("expected an error for a non-JSON response")
	}
}

func TestRankListings_TruncatesLongDescriptions(t *testing.T) {
	var prompt string
	srv := chatServer(t, `{"scores":[]}`, &prompt)
	defer srv.Close()

	long := strings.Repeat("x", 600)
	_, err := testClient(srv.URL).RankListings(context.Background(), testCriteria(t), []models.JobListing{
		{ID: "a", Description: long},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(prompt, long) {
		t.Fatalf("description not truncated in prompt")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 500)) {
		t.Fatalf("truncated description missing from prompt")
	}
}

func TestSummarizeListing_ReturnsTrimmedContent(t *testing.T) {
	srv := chatServer(t, "  A Go backend role at Acme with Redis work.  ", nil)
	defer srv.Close()

	got, err := testClient(srv.URL).SummarizeListing(context.Background(), models.JobListing{
		JobTitle: "Backend Engineer", Company: "Acme", Description: "Go and Redis",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A Go backend role at Acme with Redis work." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSendRequest_NonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).SummarizeListing(context.Background(), models.JobListing{JobTitle: "X"}); err == nil {
		t.Fatalf("expected an error for a 429 response")
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                   "{\"a\":1}",
		"```json\n{\"a\":1}\n```":     "{\"a\":1}",
		"```\n{\"a\":1}\n```":         "{\"a\":1}",
		"  \n{\"a\":1}\n  ":           "{\"a\":1}",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
