package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Metro Scramble API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.Store.db, deps.Redis))
	r.Get("/ws/echo", handleWSEcho(logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/games", handleCreateGame(deps.Store, deps.Timers))
		r.Get("/teams/{joinToken}", handleTeamLookup(deps.Store))
		r.Post("/join", handleJoin(deps.Store, deps.Notifier))

		r.Get("/game/state", handleGameState(deps.Store, deps.Engine, deps.Timers))
		r.Post("/game/unlock", handleUnlock(deps.Store, deps.Engine, deps.Notifier))
		r.Post("/game/complete", handleComplete(deps.Store, deps.Engine, deps.Notifier))
		r.Post("/game/sacrifice", handleSacrifice(deps.Store, deps.Engine, deps.Notifier))
		r.Get("/game/scores", handleScores(deps.Store, deps.Engine))
		r.Get("/game/summary", handleSummary(deps.Store, deps.Engine))
		r.Get("/game/events", handleEvents(deps.Store, deps.Broker))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
