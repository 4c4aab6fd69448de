package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/collabspace/pulse/pkg/entity"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/collabspace/pulse/internal/service UserServiceI,StreakServiceI

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type RecordActivityRequest struct {
	ActivityType string `validate:"required,activity_type"`
	Details      map[string]any
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
}

type StreakServiceI interface {
	// Appends an activity record and advances the streak state under the
	// day-gap rule. Returns the fresh projection
	RecordActivity(ctx context.Context, uid uuid.UUID, req *RecordActivityRequest) (*entity.StreakData, error)
	// Read-only projection. A streak older than one day reads as 0 without
	// a write. ErrStreakNotFound when the user has no state yet
	GetStreakData(ctx context.Context, uid uuid.UUID) (*entity.StreakData, error)
	// Persists a collapsed streak when the stored state went stale, then
	// returns the projection
	ForceRecompute(ctx context.Context, uid uuid.UUID) (*entity.StreakData, error)
}
