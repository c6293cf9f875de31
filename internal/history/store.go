// Package history keeps finished hands in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"github.com/lox/headsup/internal/handid"
	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
	"github.com/lox/headsup/poker"
)

// ErrNotFound is returned when no hand has the requested ID
var ErrNotFound = errors.New("hand not found")

const schema = `
CREATE TABLE IF NOT EXISTS hands (
	id          TEXT PRIMARY KEY,
	session     TEXT NOT NULL,
	number      INTEGER NOT NULL,
	played_at   TIMESTAMP NOT NULL,
	small_blind INTEGER NOT NULL,
	big_blind   INTEGER NOT NULL,
	dealer      INTEGER NOT NULL,
	player0     TEXT NOT NULL,
	player1     TEXT NOT NULL,
	hole0       TEXT NOT NULL,
	hole1       TEXT NOT NULL,
	board       TEXT NOT NULL,
	pot         INTEGER NOT NULL,
	winner      INTEGER NOT NULL,
	won0        INTEGER NOT NULL,
	won1        INTEGER NOT NULL,
	net0        INTEGER NOT NULL,
	net1        INTEGER NOT NULL,
	stack0      INTEGER NOT NULL,
	stack1      INTEGER NOT NULL,
	category0   INTEGER,
	category1   INTEGER,
	outcome     INTEGER,
	ended_on    INTEGER NOT NULL,
	folded      INTEGER NOT NULL,
	actions     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS hands_session ON hands(session);
`

// Config locates the database
type Config struct {
	Path   string // ":memory:" keeps the store in memory
	Clock  quartz.Clock
	Logger *log.Logger
}

// Store records and queries hands
type Store struct {
	db     *sqlx.DB
	clock  quartz.Clock
	logger *log.Logger
}

// Open opens or creates the database at cfg.Path
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("history: database path is required")
	}
	db, err := sqlx.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", cfg.Path, err)
	}
	// one writer; simulations record from several goroutines
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create tables: %w", err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Store{db: db, clock: clock, logger: logger.WithPrefix("history")}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Hand is a recorded hand
type Hand struct {
	ID         string
	Session    string
	Number     int
	PlayedAt   time.Time
	SmallBlind int
	BigBlind   int
	Dealer     int
	Players    [2]string
	Hole       [2][]poker.Card
	Board      []poker.Card
	Pot        int
	Winner     int
	Won        [2]int
	Net        [2]int
	Stacks     [2]int
	Showdown   *poker.Showdown
	EndedOn    strategy.Round
	Folded     bool
	Actions    []table.ActionRecord
}

// Result rebuilds the table's view of the hand
func (h *Hand) Result() *table.HandResult {
	return &table.HandResult{
		Number:   h.Number,
		Dealer:   h.Dealer,
		Players:  h.Players,
		Hole:     h.Hole,
		Board:    h.Board,
		Pot:      h.Pot,
		Winner:   h.Winner,
		Won:      h.Won,
		Net:      h.Net,
		Stacks:   h.Stacks,
		Folded:   h.Folded,
		EndedOn:  h.EndedOn,
		Showdown: h.Showdown,
		Actions:  h.Actions,
	}
}

// handRow is one row of the hands table
type handRow struct {
	ID         string        `db:"id"`
	Session    string        `db:"session"`
	Number     int           `db:"number"`
	PlayedAt   time.Time     `db:"played_at"`
	SmallBlind int           `db:"small_blind"`
	BigBlind   int           `db:"big_blind"`
	Dealer     int           `db:"dealer"`
	Player0    string        `db:"player0"`
	Player1    string        `db:"player1"`
	Hole0      string        `db:"hole0"`
	Hole1      string        `db:"hole1"`
	Board      string        `db:"board"`
	Pot        int           `db:"pot"`
	Winner     int           `db:"winner"`
	Won0       int           `db:"won0"`
	Won1       int           `db:"won1"`
	Net0       int           `db:"net0"`
	Net1       int           `db:"net1"`
	Stack0     int           `db:"stack0"`
	Stack1     int           `db:"stack1"`
	Category0  sql.NullInt64 `db:"category0"`
	Category1  sql.NullInt64 `db:"category1"`
	Outcome    sql.NullInt64 `db:"outcome"`
	EndedOn    int           `db:"ended_on"`
	Folded     bool          `db:"folded"`
	Actions    string        `db:"actions"`
}

func newRow(id, session string, smallBlind, bigBlind int, r *table.HandResult, at time.Time) (*handRow, error) {
	actions, err := json.Marshal(r.Actions)
	if err != nil {
		return nil, fmt.Errorf("history: encode actions: %w", err)
	}
	row := &handRow{
		ID:         id,
		Session:    session,
		Number:     r.Number,
		PlayedAt:   at.UTC(),
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Dealer:     r.Dealer,
		Player0:    r.Players[0],
		Player1:    r.Players[1],
		Hole0:      poker.FormatCards(r.Hole[0]),
		Hole1:      poker.FormatCards(r.Hole[1]),
		Board:      poker.FormatCards(r.Board),
		Pot:        r.Pot,
		Winner:     r.Winner,
		Won0:       r.Won[0],
		Won1:       r.Won[1],
		Net0:       r.Net[0],
		Net1:       r.Net[1],
		Stack0:     r.Stacks[0],
		Stack1:     r.Stacks[1],
		EndedOn:    int(r.EndedOn),
		Folded:     r.Folded,
		Actions:    string(actions),
	}
	if sd := r.Showdown; sd != nil {
		row.Category0 = sql.NullInt64{Int64: int64(sd.First), Valid: true}
		row.Category1 = sql.NullInt64{Int64: int64(sd.Second), Valid: true}
		row.Outcome = sql.NullInt64{Int64: int64(sd.Outcome), Valid: true}
	}
	return row, nil
}

func (row *handRow) hand() (*Hand, error) {
	h := &Hand{
		ID:         row.ID,
		Session:    row.Session,
		Number:     row.Number,
		PlayedAt:   row.PlayedAt,
		SmallBlind: row.SmallBlind,
		BigBlind:   row.BigBlind,
		Dealer:     row.Dealer,
		Players:    [2]string{row.Player0, row.Player1},
		Pot:        row.Pot,
		Winner:     row.Winner,
		Won:        [2]int{row.Won0, row.Won1},
		Net:        [2]int{row.Net0, row.Net1},
		Stacks:     [2]int{row.Stack0, row.Stack1},
		EndedOn:    strategy.Round(row.EndedOn),
		Folded:     row.Folded,
	}

	var err error
	for i, src := range []string{row.Hole0, row.Hole1} {
		if h.Hole[i], err = poker.ParseCards(src); err != nil {
			return nil, fmt.Errorf("history: hand %s: hole cards: %w", h.ID, err)
		}
	}
	if h.Board, err = poker.ParseCards(row.Board); err != nil {
		return nil, fmt.Errorf("history: hand %s: board: %w", h.ID, err)
	}
	if row.Outcome.Valid {
		h.Showdown = &poker.Showdown{
			First:   poker.Category(row.Category0.Int64),
			Second:  poker.Category(row.Category1.Int64),
			Outcome: poker.Outcome(row.Outcome.Int64),
		}
	}
	if err := json.Unmarshal([]byte(row.Actions), &h.Actions); err != nil {
		return nil, fmt.Errorf("history: hand %s: actions: %w", h.ID, err)
	}
	return h, nil
}

// Record stores a finished hand of session and returns its new ID
func (s *Store) Record(ctx context.Context, session string, smallBlind, bigBlind int, r *table.HandResult) (string, error) {
	id, err := handid.New()
	if err != nil {
		return "", err
	}
	row, err := newRow(id, session, smallBlind, bigBlind, r, s.clock.Now())
	if err != nil {
		return "", err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO hands (
			id, session, number, played_at, small_blind, big_blind, dealer,
			player0, player1, hole0, hole1, board, pot, winner,
			won0, won1, net0, net1, stack0, stack1,
			category0, category1, outcome, ended_on, folded, actions
		) VALUES (
			:id, :session, :number, :played_at, :small_blind, :big_blind, :dealer,
			:player0, :player1, :hole0, :hole1, :board, :pot, :winner,
			:won0, :won1, :net0, :net1, :stack0, :stack1,
			:category0, :category1, :outcome, :ended_on, :folded, :actions
		)`, row)
	if err != nil {
		return "", fmt.Errorf("history: insert hand: %w", err)
	}
	s.logger.Debug("hand recorded", "id", id, "session", session, "number", r.Number)
	return id, nil
}

// Get loads one hand
func (s *Store) Get(ctx context.Context, id string) (*Hand, error) {
	if err := handid.Validate(id); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	var row handRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM hands WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get hand: %w", err)
	}
	return row.hand()
}

// Recent returns up to n hands, newest first. Session filters when not empty.
func (s *Store) Recent(ctx context.Context, n int, session string) ([]*Hand, error) {
	query, args := `SELECT * FROM hands`, []any{}
	if session != "" {
		query += ` WHERE session = ?`
		args = append(args, session)
	}
	// IDs are time ordered
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, n)

	var rows []handRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("history: query hands: %w", err)
	}
	hands := make([]*Hand, 0, len(rows))
	for i := range rows {
		h, err := rows[i].hand()
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
	}
	return hands, nil
}

// PlayerSummary totals one player's recorded hands
type PlayerSummary struct {
	Name  string `db:"name"`
	Hands int    `db:"hands"`
	Won   int    `db:"won"`
	Net   int    `db:"net"`
}

// Summary totals every recorded hand
type Summary struct {
	Hands      int             `db:"hands"`
	Sessions   int             `db:"sessions"`
	Showdowns  int             `db:"showdowns"`
	Chopped    int             `db:"chopped"`
	BiggestPot int             `db:"biggest_pot"`
	Players    []PlayerSummary `db:"-"` // by net chips, best first
}

// Summary aggregates the whole store
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.GetContext(ctx, &sum, `
		SELECT COUNT(*) AS hands,
			COUNT(DISTINCT session) AS sessions,
			COALESCE(SUM(outcome IS NOT NULL), 0) AS showdowns,
			COALESCE(SUM(winner = -1), 0) AS chopped,
			COALESCE(MAX(pot), 0) AS biggest_pot
		FROM hands`)
	if err != nil {
		return Summary{}, fmt.Errorf("history: summary: %w", err)
	}

	err = s.db.SelectContext(ctx, &sum.Players, `
		SELECT name, COUNT(*) AS hands, SUM(won) AS won, SUM(net) AS net FROM (
			SELECT player0 AS name, winner = 0 AS won, net0 AS net FROM hands
			UNION ALL
			SELECT player1, winner = 1, net1 FROM hands
		)
		GROUP BY name
		ORDER BY SUM(net) DESC, name`)
	if err != nil {
		return Summary{}, fmt.Errorf("history: player summary: %w", err)
	}
	return sum, nil
}
