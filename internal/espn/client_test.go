package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const scoreboardPayload = `{
  "events": [
    {
      "id": "401585183",
      "date": "2024-11-02T23:00Z",
      "competitions": [
        {
          "date": "2024-11-02T23:10Z",
          "competitors": [
            {"homeAway": "home", "score": "112", "team": {"displayName": "Boston Celtics"}},
            {"homeAway": "away", "score": "104", "team": {"displayName": "Miami Heat"}}
          ]
        }
      ],
      "status": {"type": {"state": "post", "completed": true, "shortDetail": "Final"}}
    }
  ]
}`

func TestClient_FetchScoreboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apis/site/v2/sports/basketball/nba/scoreboard" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("dates"); got != "20241102" {
			t.Errorf("dates=%q, want 20241102", got)
		}
		w.Write([]byte(scoreboardPayload))
	}))
	defer srv.Close()

	client := NewClient(WithHost(srv.URL))

	sb, err := client.FetchScoreboard(context.Background(), "20241102")
	if err != nil {
		t.Fatalf("FetchScoreboard failed: %v", err)
	}

	if len(sb.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(sb.Events))
	}
	ev := sb.Events[0]
	if ev.ID != "401585183" {
		t.Errorf("Unexpected id: %s", ev.ID)
	}
	if ev.Competitions[0].Competitors[0].Score != "112" {
		t.Errorf("Score arrives as a string, got %q", ev.Competitions[0].Competitors[0].Score)
	}
	if !ev.Status.Type.Completed || ev.Status.Type.State != "post" {
		t.Errorf("Unexpected status: %+v", ev.Status.Type)
	}
}

func TestClient_FetchScoreboard_LeaguePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/basketball/wnba/") {
			t.Errorf("League must shape the path, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"events": []}`))
	}))
	defer srv.Close()

	client := NewClient(WithHost(srv.URL), WithLeague("wnba"))
	if _, err := client.FetchScoreboard(context.Background(), "20241102"); err != nil {
		t.Fatalf("FetchScoreboard failed: %v", err)
	}
}

func TestClient_FetchScoreboard_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	client := NewClient(WithHost(srv.URL))
	_, err := client.FetchScoreboard(context.Background(), "20241102")
	if err == nil {
		t.Fatal("Expected an error for status 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Error should carry the status, got %q", err)
	}
}
