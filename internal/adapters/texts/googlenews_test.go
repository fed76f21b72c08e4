package texts

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/finpulse/monitor/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func rssFeed(titles ...string) string {
	body := `<?xml version="1.0"?><rss version="2.0"><channel>`
	for _, title := range titles {
		body += fmt.Sprintf("<item><title>%s</title></item>", title)
	}
	return body + `</channel></rss>`
}

func TestGoogleNewsFetch(t *testing.T) {
	t.Run("parses and deduplicates titles", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, rssFeed("Apple beats estimates", "Apple beats estimates", "New iPhone surge", "  "))
		}))
		defer srv.Close()

		src := NewGoogleNewsSource()
		src.baseURL = srv.URL

		titles, err := src.Fetch(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}

		want := []string{"Apple beats estimates", "New iPhone surge"}
		if len(titles) != len(want) {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
		for i := range want {
			if titles[i] != want[i] {
				t.Errorf("titles[%d] = %q, want %q", i, titles[i], want[i])
			}
		}
	})

	t.Run("queries every alias for crypto symbols", func(t *testing.T) {
		var queries []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			queries = append(queries, r.URL.Query().Get("q"))
			fmt.Fprint(w, rssFeed("Bitcoin ETF update"))
		}))
		defer srv.Close()

		src := NewGoogleNewsSource()
		src.baseURL = srv.URL

		if _, err := src.Fetch(context.Background(), "BTC-USD"); err != nil {
			t.Fatalf("Fetch: %v", err)
		}

		if len(queries) != 2 || queries[0] != "bitcoin" || queries[1] != "btc" {
			t.Errorf("queries = %v, want [bitcoin btc]", queries)
		}
	})

	t.Run("caps result at thirty titles", func(t *testing.T) {
		titles := make([]string, 0, 25)
		for i := 0; i < 25; i++ {
			titles = append(titles, fmt.Sprintf("headline %d", i))
		}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, rssFeed(titles...))
		}))
		defer srv.Close()

		src := NewGoogleNewsSource()
		src.baseURL = srv.URL

		// Two alias terms x 20-per-feed cap = 40 candidates before the cap
		got, err := src.Fetch(context.Background(), "ETH-USD")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(got) > maxNewsTitles {
			t.Errorf("got %d titles, cap is %d", len(got), maxNewsTitles)
		}
	})

	t.Run("all queries failing is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		src := NewGoogleNewsSource()
		src.baseURL = srv.URL

		if _, err := src.Fetch(context.Background(), "AAPL"); err == nil {
			t.Fatal("expected error when every query fails")
		}
	})
}
