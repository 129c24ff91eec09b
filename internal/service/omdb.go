package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defaultOMDBBaseURL is the public OMDb endpoint.
const defaultOMDBBaseURL = "http://www.omdbapi.com"

// OMDBClient calls the OMDb catalog API over HTTP. Any failure mode
// (transport error, non-2xx status, malformed JSON, an explicit error
// payload from the API) is collapsed into a nil MovieData so the
// collection store can treat them all as "not found".
type OMDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOMDBClient constructs a catalog client. baseURL may be empty to
// use the public API.
func NewOMDBClient(baseURL, apiKey string) *OMDBClient {
	if baseURL == "" {
		baseURL = defaultOMDBBaseURL
	}
	return &OMDBClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// omdbResponse mirrors the subset of the OMDb payload the app uses.
// The API reports failures in-band through the Error field.
type omdbResponse struct {
	Title      string `json:"Title"`
	Director   string `json:"Director"`
	IMDBRating string `json:"imdbRating"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Error      string `json:"Error"`
}

// Fetch resolves title to normalized movie metadata, or nil when the
// catalog has no answer.
func (c *OMDBClient) Fetch(ctx context.Context, title string) (*MovieData, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("omdb: request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("omdb: unexpected status %d for title %q", resp.StatusCode, title)
		return nil, nil
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("omdb: malformed response: %v", err)
		return nil, nil
	}
	if body.Error != "" {
		log.Printf("omdb: %s (title %q)", body.Error, title)
		return nil, nil
	}
	if body.Title == "" {
		return nil, nil
	}

	data := &MovieData{
		Title:       body.Title,
		Director:    optionalField(body.Director),
		Poster:      optionalField(body.Poster),
		ReleaseYear: parseYear(body.Year),
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(body.IMDBRating), 64); err == nil {
		data.Rating = &v
	}
	return data, nil
}

// optionalField maps OMDb's "N/A" placeholder and empty strings to nil.
func optionalField(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return nil
	}
	return &s
}

// parseYear extracts the leading year from OMDb's Year field, which may
// be a plain "1999" or a series range like "1999–2002".
func parseYear(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	y, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &y
}
