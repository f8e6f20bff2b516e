package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/models"
)

// Score is one relevance judgment for a listing.
type Score struct {
	ListingID    string  `json:"listing_id"`
	Score        float64 `json:"score"`
	HardExcluded bool    `json:"hard_excluded"`
}

// Client talks to the OpenAI chat completions API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// RankListings asks the model to score each listing against the criteria.
// Skills and position are mandatory signals; experience, salary, location
// and job nature are soft contributors unless mismatched in kind, which the
// model reports as hard_excluded.
func (c *Client) RankListings(ctx context.Context, criteria models.SearchCriteria, listings []models.JobListing) ([]Score, error) {
	var cards []string
	for _, l := range listings {
		desc := l.Description
		if len(desc) > 500 {
			desc = desc[:500]
		}
		cards = append(cards, fmt.Sprintf(
			"ID: %s\nTitle: %s\nCompany: %s\nLocation: %s\nJob Nature: %s\nExperience: %s\nSalary: %s\nDescription: %s",
			l.ID, l.JobTitle, l.Company, l.Location, l.JobNature, l.Experience, l.Salary, desc,
		))
	}

	systemPrompt := `You are a job matching expert that scores job listings against a candidate's search criteria.

SCORING RULES:
1. A listing's skills and position match is mandatory: a listing with no overlap with the requested position or skills scores near 0.
2. Experience, salary, location and job nature are soft signals: a mismatch lowers the score, it does not zero it.
3. A mismatch IN KIND is a hard exclusion: for example an onsite-only listing when the candidate requires remote. Mark those with "hard_excluded": true.
4. Scores are between 0.0 and 1.0.

RESPONSE FORMAT:
Respond ONLY with valid JSON in the following format:
{
  "scores": [
    {"listing_id": "id", "score": 0.0, "hard_excluded": false}
  ]
}
Include every listing exactly once. Do not include any other text or explanation.`

	userPrompt := fmt.Sprintf(`SEARCH CRITERIA:
Position: %s
Experience: %s
Salary: %s
Job Nature: %s
Location: %s
Skills: %s

LISTINGS:
%s`,
		criteria.Position, criteria.Experience, criteria.Salary, criteria.JobNature,
		criteria.Location, strings.Join(criteria.Skills, ", "), strings.Join(cards, "\n\n"))

	responseStr, err := c.sendRequest(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Scores []Score `json:"scores"`
	}
	if err := json.Unmarshal([]byte(stripFences(responseStr)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}
	return parsed.Scores, nil
}

// SummarizeListing produces a short synopsis of a listing's description.
func (c *Client) SummarizeListing(ctx context.Context, listing models.JobListing) (string, error) {
	desc := listing.Description
	if len(desc) > 2000 {
		desc = desc[:2000]
	}
	prompt := fmt.Sprintf(`Analyze this job posting and provide a concise summary highlighting the key aspects of the role.
Always respond in English, even if the posting is in another language.
Include the main responsibilities, required skills, and any notable benefits or requirements.

Job Title: %s
Company: %s
Location: %s
Job Nature: %s
Experience: %s
Salary: %s

Description:
%s

Provide a clear and concise summary in 3-4 sentences. Respond with the summary only.`,
		listing.JobTitle, listing.Company, listing.Location, listing.JobNature,
		listing.Experience, listing.Salary, desc)

	responseStr, err := c.sendRequest(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(responseStr), nil
}

// sendRequest sends a request to the OpenAI API
func (c *Client) sendRequest(ctx context.Context, messages []Message) (string, error) {
	requestBody := request{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var openaiResp response
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return openaiResp.Choices[0].Message.Content, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
