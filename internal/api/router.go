package api

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/pable/tkstats/internal/aggregator"
	"github.com/pable/tkstats/internal/model"
	"github.com/pable/tkstats/internal/render"
	"github.com/pable/tkstats/internal/roster"
)

// Store is the persistence the API needs. *storage.DB implements it.
type Store interface {
	InsertMatch(ctx context.Context, m model.Match) (int64, error)
	InsertMatches(ctx context.Context, matches []model.Match) (int, error)
	ListMatches(ctx context.Context) ([]model.Match, error)
	GetMatch(ctx context.Context, id int64) (*model.Match, error)
	DeleteMatch(ctx context.Context, id int64) (bool, error)
	ClearMatches(ctx context.Context) (int64, error)

	InsertPlayer(ctx context.Context, p model.Player) (*model.Player, error)
	GetPlayer(ctx context.Context, id string) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)
	UpdatePlayer(ctx context.Context, p model.Player) (bool, error)
	DeletePlayer(ctx context.Context, id string) (bool, error)
}

// Router holds the HTTP routes and dependencies
type Router struct {
	mux     *http.ServeMux
	store   Store
	agg     *aggregator.Aggregator
	catalog *roster.Catalog
	renders *render.Resolver
	logger  zerolog.Logger
	origins []string
}

// NewRouter creates a new HTTP router
func NewRouter(store Store, cat *roster.Catalog, renders *render.Resolver, origins []string, logger zerolog.Logger) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		store:   store,
		agg:     aggregator.New(cat),
		catalog: cat,
		renders: renders,
		logger:  logger,
		origins: origins,
	}

	r.mux.HandleFunc("GET /api/roster", r.handleGetRoster)

	r.mux.HandleFunc("GET /api/stats/characters", r.handleGetCharacterStats)
	r.mux.HandleFunc("GET /api/stats/used-characters", r.handleGetUsedCharacters)
	r.mux.HandleFunc("GET /api/stats/matchups", r.handleGetMatchups)
	r.mux.HandleFunc("GET /api/stats/characters/{name}/matchups", r.handleGetCharacterMatchups)
	r.mux.HandleFunc("GET /api/rankings", r.handleGetRankings)

	r.mux.HandleFunc("GET /api/matches", r.handleGetMatches)
	r.mux.HandleFunc("POST /api/matches", r.handleCreateMatch)
	r.mux.HandleFunc("DELETE /api/matches", r.handleClearMatches)
	r.mux.HandleFunc("GET /api/matches/{id}", r.handleGetMatch)
	r.mux.HandleFunc("DELETE /api/matches/{id}", r.handleDeleteMatch)

	r.mux.HandleFunc("GET /api/players", r.handleGetPlayers)
	r.mux.HandleFunc("POST /api/players", r.handleCreatePlayer)
	r.mux.HandleFunc("GET /api/players/{id}", r.handleGetPlayer)
	r.mux.HandleFunc("PUT /api/players/{id}", r.handleUpdatePlayer)
	r.mux.HandleFunc("DELETE /api/players/{id}", r.handleDeletePlayer)
	r.mux.HandleFunc("GET /api/players/{id}/stats", r.handleGetPlayerStats)

	r.mux.HandleFunc("GET /render/{name}", r.handleGetRender)

	r.mux.HandleFunc("GET /health", r.handleHealth)

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler wraps the router with request-id logging and CORS.
func (r *Router) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: r.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return RequestID(r.logger)(c.Handler(r))
}
