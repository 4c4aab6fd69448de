package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/collabspace/pulse/pkg/entity"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/collabspace/pulse/internal/repository UsersRepositoryI,ActivitiesRepositoryI,StreaksRepositoryI

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
}

type ActivitiesRepositoryI interface {
	// Appends an activity record. Records are immutable once written
	Create(ctx context.Context, record *entity.ActivityRecord) error
	// Per-day activity counts for uid over [from, to], UTC days, ascending
	DailyCounts(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]entity.DailyActivity, error)
	// Total number of recorded activities for uid
	CountByUserID(ctx context.Context, uid uuid.UUID) (int, error)
}

type StreaksRepositoryI interface {
	// Returns streak state of uid, ErrStreakNotFound when no row exists yet
	Get(ctx context.Context, uid uuid.UUID) (*entity.StreakState, error)
	// Inserts the first streak row for a user. Returns ErrStreakConflict
	// if a concurrent request created the row first
	Create(ctx context.Context, state *entity.StreakState) error
	// Compare-and-set update: applies state only while last_active_date
	// still equals expectedLastActive, otherwise ErrStreakConflict
	UpdateIfUnchanged(ctx context.Context, state *entity.StreakState, expectedLastActive time.Time) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
