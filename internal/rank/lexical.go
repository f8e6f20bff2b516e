package rank

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/mohammad-safakhou/jobradar/models"
)

// lexicalDoc is the indexed view of a listing.
type lexicalDoc struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// LexicalScores indexes the listings in an in-memory bleve index and scores
// them against the criteria's position and skills. The scores are local and
// cheap; the ranker uses them to order batches sent to the model and to
// break ties between equal model scores.
func LexicalScores(criteria models.SearchCriteria, listings []models.JobListing) (map[string]float64, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("lexical index: %w", err)
	}
	defer idx.Close()

	for _, l := range listings {
		doc := lexicalDoc{Title: l.JobTitle, Company: l.Company, Description: l.Description}
		if err := idx.Index(l.ID, doc); err != nil {
			return nil, fmt.Errorf("index listing %s: %w", l.ID, err)
		}
	}

	terms := append([]string{criteria.Position}, criteria.Skills...)
	query := bleve.NewMatchQuery(strings.Join(terms, " "))
	req := bleve.NewSearchRequest(query)
	req.Size = len(listings)

	res, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	scores := make(map[string]float64, len(listings))
	for _, hit := range res.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}
