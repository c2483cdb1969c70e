package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pable/tkstats/internal/aggregator"
	"github.com/pable/tkstats/internal/render"
	"github.com/pable/tkstats/internal/roster"
	"github.com/pable/tkstats/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := storage.Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat := roster.Default()
	renders := render.NewResolver(cat, []string{t.TempDir()}, zerolog.Nop())
	router := NewRouter(db, cat, renders, []string{"*"}, zerolog.Nop())
	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func TestRoster(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, "GET", "/api/roster", "")
	expectStatus(t, resp, http.StatusOK)

	var body map[string][]string
	decode(t, resp, &body)
	if len(body["characters"]) != 39 || body["characters"][0] != "Akuma" {
		t.Errorf("unexpected roster %v", body["characters"])
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestMatchesAndCharacterStats(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, "POST", "/api/matches", `{"player1_char":"Jin","player2_char":"Paul","winner_char":"Jin"}`)
	expectStatus(t, resp, http.StatusCreated)
	var created struct {
		ID        int64  `json:"id"`
		Timestamp int64  `json:"timestamp"`
		Winner    string `json:"winner_char"`
	}
	decode(t, resp, &created)
	if created.ID <= 0 || created.Timestamp == 0 || created.Winner != "Jin" {
		t.Errorf("unexpected created match %+v", created)
	}

	resp = do(t, srv, "POST", "/api/matches", `{"player1":"paul","player2":"jin","winner":"paul"}`)
	expectStatus(t, resp, http.StatusCreated)

	resp = do(t, srv, "GET", "/api/stats/characters", "")
	expectStatus(t, resp, http.StatusOK)
	var all []map[string]interface{}
	decode(t, resp, &all)
	if len(all) != 39 {
		t.Fatalf("expected 39 rows, got %d", len(all))
	}

	resp = do(t, srv, "GET", "/api/stats/characters?used=true", "")
	expectStatus(t, resp, http.StatusOK)
	var used []map[string]interface{}
	decode(t, resp, &used)
	if len(used) != 2 {
		t.Fatalf("expected 2 used rows, got %d", len(used))
	}
	for _, row := range used {
		if row["winRate"] != "50.0%" || row["matches"].(float64) != 2 || row["usage"].(float64) != 2 {
			t.Errorf("unexpected row %v", row)
		}
	}

	resp = do(t, srv, "GET", "/api/stats/matchups", "")
	expectStatus(t, resp, http.StatusOK)
	var matchups []map[string]interface{}
	decode(t, resp, &matchups)
	if len(matchups) != 1 || matchups[0]["char1"] != "Jin" || matchups[0]["total"].(float64) != 2 {
		t.Errorf("unexpected matchups %v", matchups)
	}

	resp = do(t, srv, "GET", "/api/stats/used-characters", "")
	var names []string
	decode(t, resp, &names)
	if len(names) != 2 || names[0] != "Jin" || names[1] != "Paul" {
		t.Errorf("unexpected used characters %v", names)
	}

	resp = do(t, srv, "GET", "/api/stats/characters/jin/matchups", "")
	expectStatus(t, resp, http.StatusOK)
	var cm struct {
		Character string                   `json:"character"`
		Matchups  []map[string]interface{} `json:"matchups"`
	}
	decode(t, resp, &cm)
	if cm.Character != "Jin" || cm.Matchups[0]["opponent"] != "Paul" || cm.Matchups[0]["winrate"] != "50.0%" {
		t.Errorf("unexpected character matchups %+v", cm)
	}

	resp = do(t, srv, "GET", "/api/stats/characters/Ryu/matchups", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestCreateMatch_Invalid(t *testing.T) {
	srv := newTestServer(t)
	cases := []string{
		`{"player1_char":"Jin","player2_char":"Paul","winner_char":"Kazuya"}`,
		`{"player1_char":"Jin","player2_char":"Ryu","winner_char":"Jin"}`,
		`{"player1_char":"Jin","player2_char":"Paul"}`,
		`{"player1_char":`,
	}
	for _, body := range cases {
		resp := do(t, srv, "POST", "/api/matches", body)
		expectStatus(t, resp, http.StatusBadRequest)
		var e map[string]string
		decode(t, resp, &e)
		if e["error"] == "" {
			t.Errorf("%s: expected error message", body)
		}
	}
}

func TestImportAndDeleteMatches(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, "POST", "/api/matches", `[
		{"id": 1699999999000, "player1": "Jin", "player2": "Paul", "winner": "Jin"},
		{"player1_char": "Nina", "player2_char": "Law", "winner_char": "Law", "timestamp": "2024-01-02T03:04:05"}
	]`)
	expectStatus(t, resp, http.StatusCreated)
	var imported map[string]int
	decode(t, resp, &imported)
	if imported["imported"] != 2 {
		t.Fatalf("imported = %v", imported)
	}

	resp = do(t, srv, "GET", "/api/matches", "")
	var matches []struct {
		ID int64 `json:"id"`
	}
	decode(t, resp, &matches)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	id := matches[0].ID
	path := "/api/matches/" + strconv.FormatInt(id, 10)
	expectStatus(t, do(t, srv, "GET", path, ""), http.StatusOK)
	expectStatus(t, do(t, srv, "DELETE", path, ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, "GET", path, ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, "DELETE", path, ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, "GET", "/api/matches/abc", ""), http.StatusBadRequest)

	resp = do(t, srv, "DELETE", "/api/matches", "")
	expectStatus(t, resp, http.StatusOK)
	var cleared map[string]int64
	decode(t, resp, &cleared)
	if cleared["deleted"] != 1 {
		t.Errorf("deleted = %v", cleared)
	}
}

func TestPlayers(t *testing.T) {
	srv := newTestServer(t)

	expectStatus(t, do(t, srv, "POST", "/api/players", `{"id":"alice","name":"Alice","main_char":"lili","rank":"Tekken God"}`), http.StatusCreated)
	expectStatus(t, do(t, srv, "POST", "/api/players", `{"id":"alice","name":"Again"}`), http.StatusConflict)
	expectStatus(t, do(t, srv, "POST", "/api/players", `{"id":"bob","name":"Bob","rank":"Platinum"}`), http.StatusBadRequest)
	expectStatus(t, do(t, srv, "POST", "/api/players", `{"id":"bob","name":"Bob"}`), http.StatusCreated)

	resp := do(t, srv, "GET", "/api/players/alice", "")
	expectStatus(t, resp, http.StatusOK)
	var alice map[string]interface{}
	decode(t, resp, &alice)
	if alice["main_char"] != "Lili" {
		t.Errorf("main char not canonicalised: %v", alice)
	}

	resp = do(t, srv, "PUT", "/api/players/alice", `{"name":"Alice","main_char":"Asuka","region":"Europe"}`)
	expectStatus(t, resp, http.StatusOK)
	decode(t, resp, &alice)
	if alice["main_char"] != "Asuka" || alice["region"] != "Europe" {
		t.Errorf("update not applied: %v", alice)
	}
	expectStatus(t, do(t, srv, "PUT", "/api/players/nobody", `{"name":"X"}`), http.StatusNotFound)

	for _, body := range []string{
		`{"player1_char":"Asuka","player2_char":"Bob","winner_char":"Asuka","player1_id":"alice","player2_id":"bob","winner_id":"alice"}`,
		`{"player1_char":"Bob","player2_char":"Asuka","winner_char":"Asuka","player1_id":"bob","player2_id":"alice","winner_id":"alice"}`,
		`{"player1_char":"Lili","player2_char":"Bob","winner_char":"Bob","player1_id":"alice","player2_id":"bob","winner_id":"bob"}`,
	} {
		expectStatus(t, do(t, srv, "POST", "/api/matches", body), http.StatusCreated)
	}

	resp = do(t, srv, "GET", "/api/players/alice/stats", "")
	expectStatus(t, resp, http.StatusOK)
	var stats struct {
		TotalMatches   int    `json:"total_matches"`
		Wins           int    `json:"wins"`
		Losses         int    `json:"losses"`
		WinRate        string `json:"winrate"`
		CharacterStats []struct {
			Character string `json:"character"`
			Matches   int    `json:"matches"`
		} `json:"character_stats"`
		RecentMatches []interface{} `json:"recent_matches"`
	}
	decode(t, resp, &stats)
	if stats.TotalMatches != 3 || stats.Wins != 2 || stats.Losses != 1 || stats.WinRate != "66.7%" {
		t.Errorf("unexpected stats %+v", stats)
	}
	if len(stats.CharacterStats) != 2 || stats.CharacterStats[0].Character != "Asuka" || len(stats.RecentMatches) != 3 {
		t.Errorf("unexpected breakdown %+v", stats)
	}
	expectStatus(t, do(t, srv, "GET", "/api/players/nobody/stats", ""), http.StatusNotFound)

	resp = do(t, srv, "GET", "/api/rankings", "")
	expectStatus(t, resp, http.StatusOK)
	var rankings []struct {
		Player struct {
			ID string `json:"id"`
		} `json:"player"`
		Wins int `json:"wins"`
	}
	decode(t, resp, &rankings)
	if len(rankings) != 2 || rankings[0].Player.ID != "alice" || rankings[0].Wins != 2 {
		t.Errorf("unexpected rankings %+v", rankings)
	}

	expectStatus(t, do(t, srv, "DELETE", "/api/players/bob", ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, "GET", "/api/players/bob", ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, "DELETE", "/api/players/bob", ""), http.StatusNotFound)
}

func TestRender(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, "GET", "/render/devil_jin", "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type %q", ct)
	}
	if src := resp.Header.Get("X-Render-Source"); src != string(render.SourcePlaceholder) {
		t.Errorf("render source %q", src)
	}

	resp = do(t, srv, "GET", "/render/nobody", "")
	expectStatus(t, resp, http.StatusOK)
	if src := resp.Header.Get("X-Render-Source"); src != string(render.SourceDefault) {
		t.Errorf("render source %q", src)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/matches", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		storage.ErrPlayerExists:            http.StatusConflict,
		storage.ErrMissingCharacter:        http.StatusBadRequest,
		aggregator.ErrWinnerNotParticipant: http.StatusBadRequest,
		http.ErrBodyNotAllowed:             http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := errorStatus(err); got != want {
			t.Errorf("errorStatus(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestWriteErr_RequestID(t *testing.T) {
	var fail error
	h := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, r, fail)
	}))

	call := func() map[string]string {
		req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get("X-Request-ID") != "req-42" {
			t.Errorf("X-Request-ID header = %q", rec.Header().Get("X-Request-ID"))
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		body["status"] = strconv.Itoa(rec.Code)
		return body
	}

	fail = errors.New("disk on fire")
	body := call()
	if body["status"] != "500" || body["request_id"] != "req-42" || body["error"] != "disk on fire" {
		t.Errorf("server error body: %v", body)
	}

	fail = storage.ErrPlayerExists
	body = call()
	if body["status"] != "409" {
		t.Errorf("conflict status: %v", body)
	}
	if _, ok := body["request_id"]; ok {
		t.Errorf("client errors should not carry request_id: %v", body)
	}
}
