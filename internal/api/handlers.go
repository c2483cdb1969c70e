package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/pable/tkstats/internal/aggregator"
	"github.com/pable/tkstats/internal/ingest"
	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/render"
	"github.com/pable/tkstats/internal/storage"
)

const maxBodyBytes = 4 << 20

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeErr maps err onto a status code. Server-side failures are logged and
// the response carries the request id so it can be matched to the log line.
func writeErr(w http.ResponseWriter, req *http.Request, err error) {
	status := errorStatus(err)
	if status < http.StatusInternalServerError {
		writeError(w, status, err.Error())
		return
	}
	zerolog.Ctx(req.Context()).Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
	body := map[string]string{"error": err.Error()}
	if id := GetRequestID(req.Context()); id != "" {
		body["request_id"] = id
	}
	writeJSON(w, status, body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, aggregator.ErrUnknownCharacter),
		errors.Is(err, aggregator.ErrWinnerNotParticipant),
		errors.Is(err, ingest.ErrInvalidMatch),
		errors.Is(err, ingest.ErrInvalidPlayer),
		errors.Is(err, storage.ErrMissingCharacter):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrPlayerExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseID parses an ID from the URL path
func parseID(req *http.Request, param string) (int64, error) {
	idStr := req.PathValue(param)
	return strconv.ParseInt(idStr, 10, 64)
}

func readBody(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// loadAll fetches matches and players concurrently.
func (r *Router) loadAll(ctx context.Context) ([]model.Match, []model.Player, error) {
	var matches []model.Match
	var players []model.Player
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = r.store.ListMatches(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = r.store.ListPlayers(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return matches, players, nil
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- Roster & stats ----

func (r *Router) handleGetRoster(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"characters": r.catalog.Characters(),
		"ranks":      r.catalog.Ranks(),
		"regions":    r.catalog.Regions(),
	})
}

func (r *Router) handleGetCharacterStats(w http.ResponseWriter, req *http.Request) {
	matches, err := r.store.ListMatches(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	var stats model.CharacterTable
	if used, _ := strconv.ParseBool(req.URL.Query().Get("used")); used {
		stats, err = r.agg.UsedCharacterStats(matches)
	} else {
		stats, err = r.agg.CharacterStats(matches)
	}
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if stats == nil {
		stats = model.CharacterTable{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (r *Router) handleGetUsedCharacters(w http.ResponseWriter, req *http.Request) {
	matches, err := r.store.ListMatches(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	names := r.agg.UsedCharacters(matches)
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (r *Router) handleGetMatchups(w http.ResponseWriter, req *http.Request) {
	matches, err := r.store.ListMatches(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	stats, err := r.agg.MatchupStats(matches)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if stats == nil {
		stats = model.MatchupTable{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (r *Router) handleGetCharacterMatchups(w http.ResponseWriter, req *http.Request) {
	name, ok := r.catalog.Lookup(req.PathValue("name"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown character %q", req.PathValue("name")))
		return
	}
	matches, err := r.store.ListMatches(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	opponents, err := r.agg.CharacterMatchups(name, matches)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"character": name,
		"matchups":  opponents,
	})
}

func (r *Router) handleGetRankings(w http.ResponseWriter, req *http.Request) {
	matches, players, err := r.loadAll(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, r.agg.Rankings(matches, players))
}

// ---- Matches ----

func (r *Router) handleGetMatches(w http.ResponseWriter, req *http.Request) {
	matches, err := r.store.ListMatches(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// handleCreateMatch accepts one match object, or an array of them for a
// bulk import in either the current or the legacy field layout.
func (r *Router) handleCreateMatch(w http.ResponseWriter, req *http.Request) {
	body, err := readBody(w, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "malformed JSON")
		return
	}

	root := gjson.ParseBytes(body)
	if root.IsArray() {
		r.importMatches(w, req, body)
		return
	}

	m, err := ingest.MatchFromJSON(root)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	m, err = ingest.CanonicalMatch(m, r.catalog)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	id, err := r.store.InsertMatch(req.Context(), m)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	stored, err := r.store.GetMatch(req.Context(), id)
	if err != nil || stored == nil {
		writeErr(w, req, fmt.Errorf("reload match %d: %w", id, err))
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (r *Router) importMatches(w http.ResponseWriter, req *http.Request, body []byte) {
	matches, err := ingest.DecodeMatches(body)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	for i := range matches {
		if matches[i], err = ingest.CanonicalMatch(matches[i], r.catalog); err != nil {
			writeErr(w, req, fmt.Errorf("record %d: %w", i, err))
			return
		}
	}
	n, err := r.store.InsertMatches(req.Context(), matches)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": n})
}

func (r *Router) handleClearMatches(w http.ResponseWriter, req *http.Request) {
	n, err := r.store.ClearMatches(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (r *Router) handleGetMatch(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match ID")
		return
	}
	m, err := r.store.GetMatch(req.Context(), id)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (r *Router) handleDeleteMatch(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match ID")
		return
	}
	ok, err := r.store.DeleteMatch(req.Context(), id)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Players ----

func (r *Router) handleGetPlayers(w http.ResponseWriter, req *http.Request) {
	players, err := r.store.ListPlayers(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (r *Router) decodePlayer(w http.ResponseWriter, req *http.Request) (model.Player, bool) {
	body, err := readBody(w, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.Player{}, false
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "malformed JSON")
		return model.Player{}, false
	}
	p, err := ingest.PlayerFromJSON(gjson.ParseBytes(body))
	if err != nil {
		writeErr(w, req, err)
		return model.Player{}, false
	}
	return p, true
}

func (r *Router) handleCreatePlayer(w http.ResponseWriter, req *http.Request) {
	p, ok := r.decodePlayer(w, req)
	if !ok {
		return
	}
	p, err := ingest.CanonicalPlayer(p, r.catalog)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	created, err := r.store.InsertPlayer(req.Context(), p)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (r *Router) handleGetPlayer(w http.ResponseWriter, req *http.Request) {
	p, err := r.store.GetPlayer(req.Context(), req.PathValue("id"))
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleUpdatePlayer(w http.ResponseWriter, req *http.Request) {
	p, ok := r.decodePlayer(w, req)
	if !ok {
		return
	}
	p.ID = req.PathValue("id")
	p, err := ingest.CanonicalPlayer(p, r.catalog)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	updated, err := r.store.UpdatePlayer(req.Context(), p)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	stored, err := r.store.GetPlayer(req.Context(), p.ID)
	if err != nil {
		writeErr(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (r *Router) handleDeletePlayer(w http.ResponseWriter, req *http.Request) {
	ok, err := r.store.DeletePlayer(req.Context(), req.PathValue("id"))
	if err != nil {
		writeErr(w, req, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleGetPlayerStats(w http.ResponseWriter, req *http.Request) {
	matches, players, err := r.loadAll(req.Context())
	if err != nil {
		writeErr(w, req, err)
		return
	}
	stats := r.agg.PlayerStats(req.PathValue("id"), matches, players)
	if stats == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ---- Renders ----

func (r *Router) handleGetRender(w http.ResponseWriter, req *http.Request) {
	img, err := r.renders.Resolve(req.PathValue("name"))
	if err != nil {
		writeErr(w, req, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("X-Render-Source", string(img.Source))
	if img.Source == render.SourceFile {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}
