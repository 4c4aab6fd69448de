package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	errorvalues "github.com/collabspace/pulse/internal/error_values"
	"github.com/collabspace/pulse/pkg/cleanup"
	"github.com/collabspace/pulse/pkg/entity"
)

// StreaksRepository owns the user_streaks table. Updates go through a
// compare-and-set on last_active_date so concurrent requests for the same
// user cannot double-increment a streak.
type StreaksRepository struct {
	conn PgConnection
}

func NewStreaksRepo(cfg DBConfig) *StreaksRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for streaksRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for streaksRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &StreaksRepository{
		conn: pool,
	}
}

func NewStreaksRepoWithConn(conn PgConnection) *StreaksRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for streaksRepo: " + err.Error())
	}
	return &StreaksRepository{
		conn: conn,
	}
}

func (sr *StreaksRepository) Get(ctx context.Context, uid uuid.UUID) (*entity.StreakState, error) {
	var state entity.StreakState
	state.UserID = uid
	row := sr.conn.QueryRow(
		ctx,
		`SELECT current_streak, longest_streak, last_active_date, updated_at FROM user_streaks WHERE user_id = $1;`,
		uid,
	)
	if err := row.Scan(&state.CurrentStreak, &state.LongestStreak, &state.LastActiveDate, &state.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrStreakNotFound
		}
		return nil, errors.New("getting streak state error: " + err.Error())
	}
	return &state, nil
}

func (sr *StreaksRepository) Create(ctx context.Context, state *entity.StreakState) error {
	if state == nil {
		return errors.New("streak state is nil")
	}
	ct, err := sr.conn.Exec(
		ctx,
		`INSERT INTO user_streaks (user_id, current_streak, longest_streak, last_active_date) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id) DO NOTHING;`,
		state.UserID,
		state.CurrentStreak,
		state.LongestStreak,
		state.LastActiveDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return errorvalues.ErrUserNotFound
			}
		}
		return errors.New("creating streak state error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrStreakConflict
	}
	return nil
}

func (sr *StreaksRepository) UpdateIfUnchanged(ctx context.Context, state *entity.StreakState, expectedLastActive time.Time) error {
	if state == nil {
		return errors.New("streak state is nil")
	}
	ct, err := sr.conn.Exec(
		ctx,
		`UPDATE user_streaks SET current_streak = $2, longest_streak = $3, last_active_date = $4, updated_at = NOW() WHERE user_id = $1 AND last_active_date = $5;`,
		state.UserID,
		state.CurrentStreak,
		state.LongestStreak,
		state.LastActiveDate,
		expectedLastActive,
	)
	if err != nil {
		return errors.New("updating streak state error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrStreakConflict
	}
	return nil
}
