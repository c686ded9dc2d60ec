//go:build integration || !unit

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	httpserver "fintech_sentiment/internal/adapters/http_server"
	redisad "fintech_sentiment/internal/adapters/redis"
	"fintech_sentiment/internal/app"
	"fintech_sentiment/internal/domain"
	"fintech_sentiment/internal/storage/csvstore"
)

const e2eCSV = `app_name,reviewCreatedVersion,at,sentiment_label,sentiment_score
Google Pay,1.0,2023-07-01 10:00:00,positive,0.91
Google Pay,1.0,2023-07-02 09:00:00,negative,0.84
Google Pay,1.1,2023-07-02 17:30:00,negative,0.75
Google Pay,,2023-07-03 08:00:00,neutral,0.50
PhonePe,2.3,2023-07-01 12:00:00,positive,0.95
`

// Full stack: CSV store -> pipeline -> cache-aside on a real (mini) redis ->
// chi server with the production middleware.
func startStack(t *testing.T) *httptest.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reviews.csv")
	if err := os.WriteFile(path, []byte(e2eCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	source := csvstore.New(path)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Q:      app.NewDashboardService(source, cache, 10*time.Minute),
		A:      app.NewAnswerService(source),
		AskRPS: 100,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_Dashboard(t *testing.T) {
	ts := startStack(t)

	res, err := http.Get(ts.URL + "/v1/apps/Google%20Pay/dashboard?version=All&chart=all")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var d domain.Dashboard
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if d.Total != 4 {
		t.Fatalf("total: %d", d.Total)
	}
	if len(d.SentimentCounts) != 3 || d.SentimentCounts[0].Label != "negative" || d.SentimentCounts[0].Count != 2 {
		t.Fatalf("sentiment counts: %+v", d.SentimentCounts)
	}
	if len(d.DailyVolume) != 3 || d.DailyVolume[1].Date != "2023-07-02" || d.DailyVolume[1].Count != 2 {
		t.Fatalf("daily volume: %+v", d.DailyVolume)
	}
	if d.VersionMatrix == nil || len(d.VersionMatrix.Versions) != 2 {
		t.Fatalf("version matrix: %+v", d.VersionMatrix)
	}
	if len(d.ScoreSummaries) != 3 {
		t.Fatalf("score summaries: %+v", d.ScoreSummaries)
	}

	// second hit is served from redis and must be identical
	res2, err := http.Get(ts.URL + "/v1/apps/Google%20Pay/dashboard?version=All&chart=all")
	if err != nil {
		t.Fatalf("second GET: %v", err)
	}
	defer res2.Body.Close()
	var d2 domain.Dashboard
	if err := json.NewDecoder(res2.Body).Decode(&d2); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if d2.Total != d.Total || len(d2.SentimentCounts) != len(d.SentimentCounts) {
		t.Fatalf("cached response differs: %+v vs %+v", d2, d)
	}
}

func TestHTTP_EndToEnd_VersionFilterAndAsk(t *testing.T) {
	ts := startStack(t)

	res, err := http.Get(ts.URL + "/v1/apps/Google%20Pay/dashboard?version=1.0&chart=bar")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	var d domain.Dashboard
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Total != 2 || d.Version != "1.0" {
		t.Fatalf("version-filtered dashboard: %+v", d)
	}

	askRes, err := http.Post(ts.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"question": "How many negative reviews for Google Pay?"}`))
	if err != nil {
		t.Fatalf("POST ask: %v", err)
	}
	defer askRes.Body.Close()
	var body struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(askRes.Body).Decode(&body); err != nil {
		t.Fatalf("decode ask: %v", err)
	}
	if want := fmt.Sprintf("Google Pay has %d negative reviews.", 2); body.Answer != want {
		t.Fatalf("answer %q, want %q", body.Answer, want)
	}
}
