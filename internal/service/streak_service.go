package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	errorvalues "github.com/collabspace/pulse/internal/error_values"
	"github.com/collabspace/pulse/internal/repository"
	"github.com/collabspace/pulse/pkg/entity"
)

const (
	// Attempts for the read-compute-CAS loop before giving up
	maxUpdateAttempts = 3
	// Days of history in the activity calendar
	calendarDays = 30
)

// StreakService implements the activity recorder and the streak calculator.
// Calendar days are bounded by UTC midnight; the same convention is used on
// write and on read, so streaks behave identically near day boundaries
// regardless of server locale.
type StreakService struct {
	activitiesRepo repository.ActivitiesRepositoryI
	streaksRepo    repository.StreaksRepositoryI
}

func NewStreakService(activitiesRepo repository.ActivitiesRepositoryI, streaksRepo repository.StreaksRepositoryI) *StreakService {
	if activitiesRepo == nil || streaksRepo == nil {
		log.Fatal("on streak service provided nil repos")
	}
	return &StreakService{
		activitiesRepo: activitiesRepo,
		streaksRepo:    streaksRepo,
	}
}

func (serv *StreakService) RecordActivity(ctx context.Context, uid uuid.UUID, req *RecordActivityRequest) (*entity.StreakData, error) {
	err := validate.Struct(*req)
	if err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			return nil, errorvalues.ErrUnknownActivityType
		}
		return nil, errors.New("validation unexpected error: " + err.Error())
	}
	now := time.Now()
	err = serv.activitiesRepo.Create(ctx, &entity.ActivityRecord{
		UserID:       uid,
		ActivityType: req.ActivityType,
		Details:      req.Details,
		OccurredAt:   now,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("activities repository error: " + err.Error())
	}
	err = serv.advanceStreak(ctx, uid, utcDate(now))
	if err != nil {
		return nil, err
	}
	return serv.buildStreakData(ctx, uid, now)
}

// advanceStreak applies the day-gap rule: same day leaves the streak
// untouched, the next day increments it, a longer gap restarts it at 1.
// Concurrent requests for one user race on the CAS and the losers re-read,
// so two activities on the same day can never double-increment.
func (serv *StreakService) advanceStreak(ctx context.Context, uid uuid.UUID, today time.Time) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		state, err := serv.streaksRepo.Get(ctx, uid)
		if err != nil {
			if errors.Is(err, errorvalues.ErrStreakNotFound) {
				err = serv.streaksRepo.Create(ctx, &entity.StreakState{
					UserID:         uid,
					CurrentStreak:  1,
					LongestStreak:  1,
					LastActiveDate: today,
				})
				if errors.Is(err, errorvalues.ErrStreakConflict) {
					continue
				}
				if err != nil {
					return errors.New("streaks repository error: " + err.Error())
				}
				return nil
			}
			return errors.New("streaks repository error: " + err.Error())
		}
		last := utcDate(state.LastActiveDate)
		gap := daysBetween(last, today)
		if gap == 0 {
			return nil
		}
		current := 1
		if gap == 1 {
			current = state.CurrentStreak + 1
		}
		longest := state.LongestStreak
		if current > longest {
			longest = current
		}
		err = serv.streaksRepo.UpdateIfUnchanged(ctx, &entity.StreakState{
			UserID:         uid,
			CurrentStreak:  current,
			LongestStreak:  longest,
			LastActiveDate: today,
		}, last)
		if errors.Is(err, errorvalues.ErrStreakConflict) {
			continue
		}
		if err != nil {
			return errors.New("streaks repository error: " + err.Error())
		}
		return nil
	}
	return errorvalues.ErrStreakConflict
}

func (serv *StreakService) GetStreakData(ctx context.Context, uid uuid.UUID) (*entity.StreakData, error) {
	return serv.buildStreakData(ctx, uid, time.Now())
}

func (serv *StreakService) ForceRecompute(ctx context.Context, uid uuid.UUID) (*entity.StreakData, error) {
	now := time.Now()
	state, err := serv.streaksRepo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStreakNotFound) {
			return nil, err
		}
		return nil, errors.New("streaks repository error: " + err.Error())
	}
	last := utcDate(state.LastActiveDate)
	if daysBetween(last, utcDate(now)) > 1 && state.CurrentStreak != 0 {
		err = serv.streaksRepo.UpdateIfUnchanged(ctx, &entity.StreakState{
			UserID:         uid,
			CurrentStreak:  0,
			LongestStreak:  state.LongestStreak,
			LastActiveDate: last,
		}, last)
		// A concurrent activity moved last_active_date forward; its state
		// is newer than ours, nothing left to collapse
		if err != nil && !errors.Is(err, errorvalues.ErrStreakConflict) {
			return nil, errors.New("streaks repository error: " + err.Error())
		}
	}
	return serv.buildStreakData(ctx, uid, now)
}

func (serv *StreakService) buildStreakData(ctx context.Context, uid uuid.UUID, now time.Time) (*entity.StreakData, error) {
	state, err := serv.streaksRepo.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStreakNotFound) {
			return nil, err
		}
		return nil, errors.New("streaks repository error: " + err.Error())
	}
	total, err := serv.activitiesRepo.CountByUserID(ctx, uid)
	if err != nil {
		return nil, errors.New("activities repository error: " + err.Error())
	}
	today := utcDate(now)
	from := today.AddDate(0, 0, -(calendarDays - 1))
	to := today.AddDate(0, 0, 1)
	calendar, err := serv.activitiesRepo.DailyCounts(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("activities repository error: " + err.Error())
	}
	return &entity.StreakData{
		CurrentStreak:    effectiveStreak(state, today),
		LongestStreak:    state.LongestStreak,
		TotalActivities:  total,
		LastActiveDate:   utcDate(state.LastActiveDate),
		ActivityCalendar: calendar,
	}, nil
}

// effectiveStreak applies staleness lazily: the stored value holds while the
// last activity was today or yesterday, otherwise the chain is broken and
// the streak reads as 0 without a write.
func effectiveStreak(state *entity.StreakState, today time.Time) int {
	if daysBetween(utcDate(state.LastActiveDate), today) > 1 {
		return 0
	}
	return state.CurrentStreak
}

func utcDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
