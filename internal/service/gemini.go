package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// defaultGeminiBaseURL is the public Generative Language API endpoint.
const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// maxSuggestions caps how many similar titles a single request returns.
const maxSuggestions = 5

// GeminiClient asks the Gemini API for movies similar to a given title.
// Like the catalog client it never propagates upstream trouble: a
// missing key, quota exhaustion, transport failure or unparseable
// output all yield a nil suggestion list.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient constructs a recommendation client. baseURL may be
// empty to use the public API; an empty apiKey disables the client.
func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if model == "" {
		model = "gemini-flash-latest"
	}
	return &GeminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// generateContent request/response shapes, trimmed to what the app uses.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Suggest returns up to five titles similar to title, or nil when the
// service cannot answer.
func (g *GeminiClient) Suggest(ctx context.Context, title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if g.apiKey == "" {
		log.Printf("gemini: no API key configured, recommendations disabled")
		return nil
	}

	prompt := fmt.Sprintf(`Based on the movie "%s", suggest 5 similar movies that a viewer would likely enjoy.

Please respond with ONLY a JSON array of movie titles, nothing else. Format: ["Movie Title 1", "Movie Title 2", "Movie Title 3", "Movie Title 4", "Movie Title 5"]

Focus on movies that are similar in genre, tone, themes, style and target audience.

Return the movies as a JSON array only.`, title)

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("gemini: request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		log.Printf("gemini: quota or rate limit exceeded for %q", title)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("gemini: unexpected status %d for %q", resp.StatusCode, title)
		return nil
	}

	var body geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("gemini: malformed response: %v", err)
		return nil
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return nil
	}
	text := strings.TrimSpace(body.Candidates[0].Content.Parts[0].Text)

	if movies := parseSuggestionJSON(text); movies != nil {
		return movies
	}
	// Structured parse failed; fall back to best-effort text extraction.
	if movies := extractMoviesFromText(text); movies != nil {
		log.Printf("gemini: recovered %d titles from unstructured output for %q", len(movies), title)
		return movies
	}
	log.Printf("gemini: could not extract movie titles for %q", title)
	return nil
}

// parseSuggestionJSON parses the expected JSON-array answer, stripping
// the markdown code fences models like to wrap it in.
func parseSuggestionJSON(text string) []string {
	cleaned := text
	if i := strings.Index(cleaned, "```json"); i >= 0 {
		cleaned = cleaned[i+len("```json"):]
		if j := strings.Index(cleaned, "```"); j >= 0 {
			cleaned = cleaned[:j]
		}
	} else if i := strings.Index(cleaned, "```"); i >= 0 {
		cleaned = cleaned[i+len("```"):]
		if j := strings.Index(cleaned, "```"); j >= 0 {
			cleaned = cleaned[:j]
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	var movies []string
	if err := json.Unmarshal([]byte(cleaned), &movies); err != nil {
		return nil
	}
	return dedupTitles(movies)
}

var (
	quotedTitleRe   = regexp.MustCompile(`"([^"]+)"`)
	numberedTitleRe = regexp.MustCompile(`\d+\.\s*([^\n]+)`)
)

// extractMoviesFromText pulls titles out of free-form model output:
// quoted strings first, numbered list items as a backup.
func extractMoviesFromText(text string) []string {
	var movies []string
	for _, m := range quotedTitleRe.FindAllStringSubmatch(text, -1) {
		movies = append(movies, m[1])
	}
	if len(movies) < 3 {
		for _, m := range numberedTitleRe.FindAllStringSubmatch(text, -1) {
			movies = append(movies, m[1])
			if len(movies) >= maxSuggestions*2 {
				break
			}
		}
	}
	return dedupTitles(movies)
}

// dedupTitles trims quotes/whitespace, removes case-insensitive
// duplicates preserving order, and caps the list at maxSuggestions.
// Returns nil for an empty result.
func dedupTitles(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, title := range raw {
		clean := strings.Trim(strings.TrimSpace(title), `"'`)
		if clean == "" {
			continue
		}
		key := strings.ToLower(clean)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, clean)
		if len(out) == maxSuggestions {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
