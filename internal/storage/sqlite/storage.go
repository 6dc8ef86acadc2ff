package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/storage"
)

// timestampExpr yields UTC timestamps with millisecond precision, so that
// LastModified comparisons are meaningful within a single request burst
const timestampExpr = `strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	token TEXT PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	scope TEXT,
	created_at TEXT NOT NULL DEFAULT (` + timestampExpr + `),
	last_modified TEXT NOT NULL DEFAULT (` + timestampExpr + `)
) STRICT, WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	state BLOB NOT NULL,
	created_at TEXT NOT NULL DEFAULT (` + timestampExpr + `),
	last_modified TEXT NOT NULL DEFAULT (` + timestampExpr + `)
) STRICT, WITHOUT ROWID;
`

// Storage is a SQLite-backed implementation of the storage interface.
// Merge patches are applied store-side via json_patch in a single UPDATE,
// and rows-affected counts are the sole not-found signal.
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database at cfg.Path and initializes the schema
func New(cfg Config) (*Storage, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}

	// One connection: the store executes for a single serialized writer,
	// and a shared connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Client operations

func (s *Storage) InsertClient(ctx context.Context, token string, id model.ClientID) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (token, id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		token, string(id),
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrClientIDTaken
	}
	return nil
}

func (s *Storage) GetClientByToken(ctx context.Context, token string) (*model.Client, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, id, scope, created_at, last_modified FROM clients WHERE token = ?`,
		token,
	)
	return scanClient(row)
}

func (s *Storage) GetClientByID(ctx context.Context, id model.ClientID) (*model.Client, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, id, scope, created_at, last_modified FROM clients WHERE id = ?`,
		string(id),
	)
	return scanClient(row)
}

func (s *Storage) ListClients(ctx context.Context) ([]*model.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token, id, scope, created_at, last_modified FROM clients ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	clients := []*model.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (s *Storage) SetClientScope(ctx context.Context, id model.ClientID, scope model.Scope) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET scope = ?, last_modified = `+timestampExpr+` WHERE id = ?`,
		scope.String(), string(id),
	)
	if err != nil {
		return err
	}
	return mapRowsAffected(res, model.ErrClientNotFound)
}

func (s *Storage) DeleteClient(ctx context.Context, id model.ClientID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return mapRowsAffected(res, model.ErrClientNotFound)
}

// Player operations

func (s *Storage) CreatePlayerIfAbsent(ctx context.Context, id model.PlayerID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, state) VALUES (?, jsonb('{}')) ON CONFLICT DO NOTHING`,
		string(id),
	)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, json(state), created_at, last_modified FROM players WHERE id = ?`,
		string(id),
	)

	var (
		player   model.Player
		state    string
		created  string
		modified string
	)
	if err := row.Scan(&player.ID, &state, &created, &modified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	player.State = json.RawMessage(state)

	var err error
	if player.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if player.LastModified, err = parseTimestamp(modified); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.PlayerSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, last_modified FROM players ORDER BY last_modified DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	summaries := []*model.PlayerSummary{}
	for rows.Next() {
		var (
			summary  model.PlayerSummary
			created  string
			modified string
		)
		if err := rows.Scan(&summary.ID, &created, &modified); err != nil {
			return nil, err
		}
		if summary.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		if summary.LastModified, err = parseTimestamp(modified); err != nil {
			return nil, err
		}
		summaries = append(summaries, &summary)
	}
	return summaries, rows.Err()
}

func (s *Storage) PatchPlayerState(ctx context.Context, id model.PlayerID, patch json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET state = jsonb_patch(state, ?), last_modified = `+timestampExpr+` WHERE id = ?`,
		string(patch), string(id),
	)
	if err != nil {
		return err
	}
	return mapRowsAffected(res, model.ErrPlayerNotFound)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return mapRowsAffected(res, model.ErrPlayerNotFound)
}

// Helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*model.Client, error) {
	var (
		client   model.Client
		scope    sql.NullString
		created  string
		modified string
	)
	if err := row.Scan(&client.Token, &client.ID, &scope, &created, &modified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrClientNotFound
		}
		return nil, err
	}

	if scope.Valid {
		parsed, err := model.ParseScope(scope.String)
		if err != nil {
			return nil, fmt.Errorf("stored scope %q: %w", scope.String, err)
		}
		client.Scope = &parsed
	}

	var err error
	if client.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if client.LastModified, err = parseTimestamp(modified); err != nil {
		return nil, err
	}
	return &client, nil
}

func mapRowsAffected(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored timestamp %q: %w", s, err)
	}
	return t, nil
}
