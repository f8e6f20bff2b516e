package rank

import (
	"testing"

	"github.com/mohammad-safakhou/jobradar/models"
)

func TestLexicalScores_MatchingListingOutscoresUnrelated(t *testing.T) {
	criteria, _ := models.NewSearchCriteria("Backend Engineer", "", "", "", "", []string{"Go", "Redis"})
	listings := []models.JobListing{
		{ID: "match", JobTitle: "Backend Engineer", Description: "Go services with Redis caching"},
		{ID: "other", JobTitle: "Pastry Chef", Description: "Croissants and sourdough"},
	}
	scores, err := LexicalScores(criteria, listings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores["match"] <= scores["other"] {
		t.Fatalf("expected matching listing to outscore unrelated one: %v", scores)
	}
}

func TestLexicalScores_EmptyListings(t *testing.T) {
	criteria, _ := models.NewSearchCriteria("Engineer", "", "", "", "", []string{"Go"})
	scores, err := LexicalScores(criteria, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("expected no scores, got %v", scores)
	}
}
