package server

import (
	"context"
	"log/slog"
	"time"
)

// SeedDemo creates a demo game with two teams if the database holds no
// games at all, and logs the join tokens so players can get in.
// Idempotent: does nothing once any game exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, store *SQLiteStore, timers *TimerRegistry) error {
	var count int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	detail, err := store.CreateGame(ctx, "Demo Scramble", []string{"Red Line Runners", "Blue Line Bandits"}, time.Now())
	if err != nil {
		return err
	}

	sess, err := store.Game(ctx, detail.ID)
	if err != nil {
		return err
	}
	timers.Watch(ctx, sess)

	for _, team := range detail.Teams {
		logger.Info("demo team created", "team", team.Name, "join_token", team.JoinToken)
	}
	return nil
}
