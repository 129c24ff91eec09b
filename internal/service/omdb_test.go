package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func omdbServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") == "" {
			t.Error("apikey missing from request")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOMDBFetchSuccess(t *testing.T) {
	srv := omdbServer(t, http.StatusOK, `{
		"Title": "The Matrix",
		"Year": "1999",
		"Director": "Lana Wachowski, Lilly Wachowski",
		"Poster": "https://example.com/matrix.jpg",
		"imdbRating": "8.7"
	}`)
	client := NewOMDBClient(srv.URL, "test-key")

	data, err := client.Fetch(context.Background(), "The Matrix")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if data == nil {
		t.Fatal("expected movie data")
	}
	if data.Title != "The Matrix" {
		t.Fatalf("title = %q", data.Title)
	}
	if data.ReleaseYear == nil || *data.ReleaseYear != 1999 {
		t.Fatalf("year = %v, want 1999", data.ReleaseYear)
	}
	if data.Rating == nil || *data.Rating != 8.7 {
		t.Fatalf("rating = %v, want 8.7", data.Rating)
	}
	if data.Director == nil || data.Poster == nil {
		t.Fatalf("director/poster not carried over: %+v", data)
	}
}

func TestOMDBFetchNAFields(t *testing.T) {
	srv := omdbServer(t, http.StatusOK, `{
		"Title": "Obscure Short",
		"Year": "2001–2004",
		"Director": "N/A",
		"Poster": "N/A",
		"imdbRating": "N/A"
	}`)
	client := NewOMDBClient(srv.URL, "test-key")

	data, err := client.Fetch(context.Background(), "Obscure Short")
	if err != nil || data == nil {
		t.Fatalf("fetch: data=%v err=%v", data, err)
	}
	if data.Director != nil || data.Poster != nil || data.Rating != nil {
		t.Fatalf("N/A fields must be nil: %+v", data)
	}
	// A series range keeps only the first year.
	if data.ReleaseYear == nil || *data.ReleaseYear != 2001 {
		t.Fatalf("year = %v, want 2001", data.ReleaseYear)
	}
}

func TestOMDBFetchNotFound(t *testing.T) {
	// OMDb reports misses in-band with a 200 status.
	srv := omdbServer(t, http.StatusOK, `{"Response":"False","Error":"Movie not found!"}`)
	client := NewOMDBClient(srv.URL, "test-key")

	data, err := client.Fetch(context.Background(), "No Such Film")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data, got %+v", data)
	}
}

func TestOMDBFetchBadStatus(t *testing.T) {
	srv := omdbServer(t, http.StatusUnauthorized, `{"Error":"Invalid API key!"}`)
	client := NewOMDBClient(srv.URL, "bad-key")
	if data, err := client.Fetch(context.Background(), "The Matrix"); err != nil || data != nil {
		t.Fatalf("bad status: data=%v err=%v, want nil/nil", data, err)
	}
}

func TestOMDBFetchMalformedBody(t *testing.T) {
	srv := omdbServer(t, http.StatusOK, `<html>gateway error</html>`)
	client := NewOMDBClient(srv.URL, "test-key")
	if data, err := client.Fetch(context.Background(), "The Matrix"); err != nil || data != nil {
		t.Fatalf("malformed body: data=%v err=%v, want nil/nil", data, err)
	}
}

func TestOMDBFetchTransportError(t *testing.T) {
	srv := omdbServer(t, http.StatusOK, `{}`)
	srv.Close()
	client := NewOMDBClient(srv.URL, "test-key")
	if data, err := client.Fetch(context.Background(), "The Matrix"); err != nil || data != nil {
		t.Fatalf("transport error: data=%v err=%v, want nil/nil", data, err)
	}
}

func TestParseYear(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"1999", ptrInt(1999)},
		{"1999–2002", ptrInt(1999)},
		{" 2010 ", ptrInt(2010)},
		{"N/A", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := parseYear(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("parseYear(%q) = %d, want nil", tc.in, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Errorf("parseYear(%q) = %v, want %d", tc.in, got, *tc.want)
		}
	}
}
