package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lascramble/scramble/internal/scramble"
)

// SQLiteStore implements engine.Store plus the session and roster queries
// the handlers need. All timestamps are stored as UTC strings.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Sessions and rosters

func (s *SQLiteStore) PlayerFromToken(ctx context.Context, token string) (playerSession, error) {
	var sess playerSession
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.team_id, t.game_id
		FROM players p
		JOIN teams t ON t.id = p.team_id
		WHERE p.session_id = ?
	`, token).Scan(&sess.PlayerID, &sess.TeamID, &sess.GameID)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

func (s *SQLiteStore) TeamLookup(ctx context.Context, joinToken string) (TeamLookupResponse, error) {
	var resp TeamLookupResponse
	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.game_id, t.name, g.name
		FROM teams t
		JOIN games g ON g.id = t.game_id
		WHERE t.join_token = ? AND g.status = 'active'
	`, joinToken).Scan(&resp.ID, &resp.GameID, &resp.Name, &resp.GameName)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, ErrNotFound
	}
	return resp, err
}

func (s *SQLiteStore) JoinTeam(ctx context.Context, teamID, playerName string) (playerID, sessionID string, err error) {
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO players (id, team_id, name, session_id)
		VALUES (lower(hex(randomblob(16))), ?, ?, lower(hex(randomblob(16))))
		RETURNING id, session_id
	`, teamID, playerName).Scan(&playerID, &sessionID)
	return playerID, sessionID, err
}

func (s *SQLiteStore) ListPlayers(ctx context.Context, teamID string) ([]PlayerInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM players WHERE team_id = ? ORDER BY joined_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLiteStore) TeamNames(ctx context.Context, gameID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM teams WHERE game_id = ? ORDER BY created_at
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// Games

func (s *SQLiteStore) CreateGame(ctx context.Context, name string, teamNames []string, startedAt time.Time) (GameDetail, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GameDetail{}, err
	}
	defer tx.Rollback()

	detail := GameDetail{
		ID:        newID(),
		Name:      name,
		Status:    string(scramble.GameStatusActive),
		StartedAt: fmtTime(startedAt),
		Duration:  int(scramble.GameDuration.Seconds()),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, name, status, started_at, duration_seconds)
		VALUES (?, ?, 'active', ?, ?)
	`, detail.ID, name, detail.StartedAt, detail.Duration)
	if err != nil {
		return GameDetail{}, err
	}

	for _, teamName := range teamNames {
		team := TeamItem{
			ID:        newID(),
			Name:      teamName,
			JoinToken: generateJoinToken(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO teams (id, game_id, name, join_token)
			VALUES (?, ?, ?, ?)
		`, team.ID, detail.ID, team.Name, team.JoinToken)
		if err != nil {
			return GameDetail{}, err
		}
		detail.Teams = append(detail.Teams, team)
	}

	if err := tx.Commit(); err != nil {
		return GameDetail{}, err
	}
	return detail, nil
}

func (s *SQLiteStore) Game(ctx context.Context, gameID string) (scramble.Session, error) {
	var (
		sess      scramble.Session
		status    string
		startedAt sql.NullString
		duration  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, status, started_at, duration_seconds
		FROM games WHERE id = ?
	`, gameID).Scan(&sess.ID, &sess.Name, &status, &startedAt, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, ErrNotFound
	}
	if err != nil {
		return sess, err
	}
	sess.Status = scramble.GameStatus(status)
	sess.Duration = time.Duration(duration) * time.Second
	if startedAt.Valid {
		t := parseTime(startedAt.String)
		sess.StartedAt = &t
	}
	return sess, nil
}

func (s *SQLiteStore) ActiveGames(ctx context.Context) ([]scramble.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM games WHERE status = 'active'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var sessions []scramble.Session
	for _, id := range ids {
		sess, err := s.Game(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// ExpireGame transitions an active game to ended. It reports whether this
// call made the transition, so game_ended side effects fire exactly once no
// matter how many observers notice the deadline.
func (s *SQLiteStore) ExpireGame(ctx context.Context, gameID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE games SET status = 'ended', ended_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ? AND status = 'active'
	`, gameID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// Global challenge bindings

func (s *SQLiteStore) Binding(ctx context.Context, gameID, station string, line scramble.Line) (scramble.Challenge, bool, error) {
	var ch scramble.Challenge
	err := s.db.QueryRowContext(ctx, `
		SELECT title, description, station, line
		FROM station_challenges WHERE game_id = ? AND key = ?
	`, gameID, scramble.StationLineKey(station, line)).
		Scan(&ch.Title, &ch.Description, &ch.Station, &ch.Line)
	if errors.Is(err, sql.ErrNoRows) {
		return ch, false, nil
	}
	if err != nil {
		return ch, false, err
	}
	return ch, true, nil
}

// CreateBinding is an atomic create-if-absent: of two racing first
// unlockers, one insert wins and both read back the same challenge.
func (s *SQLiteStore) CreateBinding(ctx context.Context, gameID string, ch scramble.Challenge) (scramble.Challenge, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO station_challenges (game_id, key, title, description, station, line, created_at)
		VALUES (?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (game_id, key) DO NOTHING
	`, gameID, ch.BindingKey(), ch.Title, ch.Description, ch.Station, ch.Line)
	if err != nil {
		return scramble.Challenge{}, err
	}

	bound, ok, err := s.Binding(ctx, gameID, ch.Station, ch.Line)
	if err != nil {
		return scramble.Challenge{}, err
	}
	if !ok {
		return scramble.Challenge{}, fmt.Errorf("binding for %s vanished after insert", ch.BindingKey())
	}
	return bound, nil
}

// Team progress

func (s *SQLiteStore) TeamChallenges(ctx context.Context, gameID, teamID string) ([]scramble.TeamChallenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, description, station, line, state, updated_at
		FROM team_challenges
		WHERE game_id = ? AND team_id = ?
		ORDER BY updated_at
	`, gameID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scramble.TeamChallenge
	for rows.Next() {
		var (
			tc        scramble.TeamChallenge
			updatedAt string
		)
		if err := rows.Scan(&tc.Title, &tc.Description, &tc.Station, &tc.Line, &tc.State, &updatedAt); err != nil {
			return nil, err
		}
		tc.UpdatedAt = parseTime(updatedAt)
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveUnlocked(ctx context.Context, gameID, teamID string, ch scramble.Challenge, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_challenges (game_id, team_id, key, state, title, description, station, line, updated_at)
		VALUES (?, ?, ?, 'unlocked', ?, ?, ?, ?, ?)
		ON CONFLICT (game_id, team_id, key) DO NOTHING
	`, gameID, teamID, ch.Key(), ch.Title, ch.Description, ch.Station, ch.Line, fmtTime(at))
	return err
}

func (s *SQLiteStore) CompleteChallenge(ctx context.Context, gameID, teamID string, ch scramble.Challenge, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE team_challenges SET state = 'completed', updated_at = ?
		WHERE game_id = ? AND team_id = ? AND key = ? AND state = 'unlocked'
	`, fmtTime(at), gameID, teamID, ch.Key())
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return scramble.ErrNotUnlocked
	}

	result, err = tx.ExecContext(ctx, `
		INSERT INTO global_completions (game_id, key, team_id, station, line, title, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id, key) DO NOTHING
	`, gameID, ch.BindingKey(), teamID, ch.Station, ch.Line, ch.Title, fmtTime(at))
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Another team won the ledger race; the rollback keeps our instance
		// unlocked (stale) rather than completed.
		return scramble.ErrGloballyResolved
	}

	return tx.Commit()
}

func (s *SQLiteStore) SacrificeChallenge(ctx context.Context, gameID, teamID string, ch scramble.Challenge, lockedUntil, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE team_challenges SET state = 'sacrificed', updated_at = ?
		WHERE game_id = ? AND team_id = ? AND key = ? AND state = 'unlocked'
	`, fmtTime(at), gameID, teamID, ch.Key())
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return scramble.ErrNotUnlocked
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sacrificed_stations (game_id, team_id, station, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (game_id, team_id, station) DO NOTHING
	`, gameID, teamID, ch.Station, fmtTime(at))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO line_locks (game_id, team_id, line, locked_until)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (game_id, team_id, line) DO UPDATE SET locked_until = excluded.locked_until
	`, gameID, teamID, ch.Line, fmtTime(lockedUntil))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) SacrificedStations(ctx context.Context, gameID, teamID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT station FROM sacrificed_stations WHERE game_id = ? AND team_id = ?
	`, gameID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make(map[string]struct{})
	for rows.Next() {
		var station string
		if err := rows.Scan(&station); err != nil {
			return nil, err
		}
		stations[station] = struct{}{}
	}
	return stations, rows.Err()
}

func (s *SQLiteStore) LineLock(ctx context.Context, gameID, teamID string, line scramble.Line) (time.Time, bool, error) {
	var lockedUntil string
	err := s.db.QueryRowContext(ctx, `
		SELECT locked_until FROM line_locks
		WHERE game_id = ? AND team_id = ? AND line = ?
	`, gameID, teamID, line).Scan(&lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return parseTime(lockedUntil), true, nil
}

func (s *SQLiteStore) LineLocks(ctx context.Context, gameID, teamID string) (map[scramble.Line]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT line, locked_until FROM line_locks WHERE game_id = ? AND team_id = ?
	`, gameID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locks := make(map[scramble.Line]time.Time)
	for rows.Next() {
		var (
			line        scramble.Line
			lockedUntil string
		)
		if err := rows.Scan(&line, &lockedUntil); err != nil {
			return nil, err
		}
		locks[line] = parseTime(lockedUntil)
	}
	return locks, rows.Err()
}

// Global completion ledger

func (s *SQLiteStore) GlobalCompletions(ctx context.Context, gameID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, team_id FROM global_completions WHERE game_id = ?
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := make(map[string]string)
	for rows.Next() {
		var key, teamID string
		if err := rows.Scan(&key, &teamID); err != nil {
			return nil, err
		}
		ledger[key] = teamID
	}
	return ledger, rows.Err()
}

func (s *SQLiteStore) CompletionLedger(ctx context.Context, gameID string) ([]scramble.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, station, line, title, completed_at
		FROM global_completions WHERE game_id = ?
		ORDER BY completed_at
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scramble.Completion
	for rows.Next() {
		var (
			c           scramble.Completion
			completedAt string
		)
		if err := rows.Scan(&c.TeamID, &c.Station, &c.Line, &c.Title, &completedAt); err != nil {
			return nil, err
		}
		c.CompletedAt = parseTime(completedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CompletedByTeam(ctx context.Context, gameID string) (map[string][]scramble.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, title, description, station, line
		FROM team_challenges
		WHERE game_id = ? AND state = 'completed'
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completed := make(map[string][]scramble.Challenge)
	for rows.Next() {
		var (
			teamID string
			ch     scramble.Challenge
		)
		if err := rows.Scan(&teamID, &ch.Title, &ch.Description, &ch.Station, &ch.Line); err != nil {
			return nil, err
		}
		completed[teamID] = append(completed[teamID], ch)
	}
	return completed, rows.Err()
}

func (s *SQLiteStore) OthersUnlocked(ctx context.Context, gameID, excludeTeamID string) (map[string][]scramble.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, title, description, station, line
		FROM team_challenges
		WHERE game_id = ? AND team_id != ? AND state = 'unlocked'
	`, gameID, excludeTeamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[string][]scramble.Challenge)
	for rows.Next() {
		var (
			teamID string
			ch     scramble.Challenge
		)
		if err := rows.Scan(&teamID, &ch.Title, &ch.Description, &ch.Station, &ch.Line); err != nil {
			return nil, err
		}
		unlocked[teamID] = append(unlocked[teamID], ch)
	}
	return unlocked, rows.Err()
}
