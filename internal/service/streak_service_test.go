package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errorvalues "github.com/collabspace/pulse/internal/error_values"
	"github.com/collabspace/pulse/internal/repository/mocks"
	"github.com/collabspace/pulse/internal/service"
	"github.com/collabspace/pulse/pkg/entity"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

func today() time.Time {
	year, month, day := time.Now().UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysAgo(n int) time.Time {
	return today().AddDate(0, 0, -n)
}

func TestRecordActivityFreshUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()

	activitiesRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(nil, errorvalues.ErrStreakNotFound)
	streaksRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, state *entity.StreakState) error {
			assert.Equal(t, 1, state.CurrentStreak)
			assert.Equal(t, 1, state.LongestStreak)
			assert.Equal(t, today(), state.LastActiveDate)
			return nil
		})
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
		UserID:         uid,
		CurrentStreak:  1,
		LongestStreak:  1,
		LastActiveDate: today(),
	}, nil)
	activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(1, nil)
	activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
		Return([]entity.DailyActivity{{Date: today().Format(time.DateOnly), Count: 1}}, nil)

	data, err := serv.RecordActivity(context.Background(), uid, &service.RecordActivityRequest{
		ActivityType: "message-sent",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, data.CurrentStreak)
	assert.Equal(t, 1, data.LongestStreak)
	assert.Equal(t, 1, data.TotalActivities)
}

func TestRecordActivitySameDayUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()
	state := &entity.StreakState{
		UserID:         uid,
		CurrentStreak:  3,
		LongestStreak:  5,
		LastActiveDate: today(),
	}

	activitiesRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	// No UpdateIfUnchanged expected: same-day activity must not touch the row
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(state, nil).Times(2)
	activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(10, nil)
	activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
		Return([]entity.DailyActivity{}, nil)

	data, err := serv.RecordActivity(context.Background(), uid, &service.RecordActivityRequest{
		ActivityType: "board-edited",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, data.CurrentStreak)
	assert.Equal(t, 5, data.LongestStreak)
}

func TestRecordActivityNextDayIncrements(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()

	activitiesRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
		UserID:         uid,
		CurrentStreak:  5,
		LongestStreak:  5,
		LastActiveDate: daysAgo(1),
	}, nil)
	streaksRepo.EXPECT().UpdateIfUnchanged(gomock.Any(), gomock.Any(), daysAgo(1)).DoAndReturn(
		func(_ context.Context, state *entity.StreakState, _ time.Time) error {
			assert.Equal(t, 6, state.CurrentStreak)
			assert.Equal(t, 6, state.LongestStreak)
			assert.Equal(t, today(), state.LastActiveDate)
			return nil
		})
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
		UserID:         uid,
		CurrentStreak:  6,
		LongestStreak:  6,
		LastActiveDate: today(),
	}, nil)
	activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(20, nil)
	activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
		Return([]entity.DailyActivity{}, nil)

	data, err := serv.RecordActivity(context.Background(), uid, &service.RecordActivityRequest{
		ActivityType: "message-sent",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, data.CurrentStreak)
	assert.Equal(t, 6, data.LongestStreak)
}

func TestRecordActivityGapRestartsAtOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()

	activitiesRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
		UserID:         uid,
		CurrentStreak:  7,
		LongestStreak:  9,
		LastActiveDate: daysAgo(3),
	}, nil)
	streaksRepo.EXPECT().UpdateIfUnchanged(gomock.Any(), gomock.Any(), daysAgo(3)).DoAndReturn(
		func(_ context.Context, state *entity.StreakState, _ time.Time) error {
			assert.Equal(t, 1, state.CurrentStreak)
			assert.Equal(t, 9, state.LongestStreak)
			return nil
		})
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
		UserID:         uid,
		CurrentStreak:  1,
		LongestStreak:  9,
		LastActiveDate: today(),
	}, nil)
	activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(30, nil)
	activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
		Return([]entity.DailyActivity{}, nil)

	data, err := serv.RecordActivity(context.Background(), uid, &service.RecordActivityRequest{
		ActivityType: "room-joined",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, data.CurrentStreak)
	assert.Equal(t, 9, data.LongestStreak)
}

func TestRecordActivityCasConflictRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()
	advanced := &entity.StreakState{
		UserID:         uid,
		CurrentStreak:  6,
		LongestStreak:  6,
		LastActiveDate: today(),
	}

	activitiesRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	// First attempt loses the race for the first activity of the day; the
	// re-read sees the winner's state and treats it as a same-day activity
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
		UserID:         uid,
		CurrentStreak:  5,
		LongestStreak:  5,
		LastActiveDate: daysAgo(1),
	}, nil)
	streaksRepo.EXPECT().UpdateIfUnchanged(gomock.Any(), gomock.Any(), daysAgo(1)).
		Return(errorvalues.ErrStreakConflict)
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(advanced, nil).Times(2)
	activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(12, nil)
	activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
		Return([]entity.DailyActivity{}, nil)

	data, err := serv.RecordActivity(context.Background(), uid, &service.RecordActivityRequest{
		ActivityType: "message-sent",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, data.CurrentStreak)
}

func TestRecordActivityUnknownType(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)

	testCases := []struct {
		Desc         string
		ActivityType string
	}{
		{Desc: "unrecognized tag", ActivityType: "coffee-break"},
		{Desc: "empty tag", ActivityType: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			_, err := serv.RecordActivity(context.Background(), uuid.New(), &service.RecordActivityRequest{
				ActivityType: tc.ActivityType,
			})
			assert.ErrorIs(t, err, errorvalues.ErrUnknownActivityType)
		})
	}
}

func TestGetStreakDataNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()

	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(nil, errorvalues.ErrStreakNotFound)

	_, err := serv.GetStreakData(context.Background(), uid)
	assert.ErrorIs(t, err, errorvalues.ErrStreakNotFound)
}

func TestGetStreakDataLazyStaleness(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()

	testCases := []struct {
		Desc            string
		LastActive      time.Time
		StoredStreak    int
		ExpectedCurrent int
	}{
		{Desc: "active today", LastActive: today(), StoredStreak: 5, ExpectedCurrent: 5},
		{Desc: "active yesterday still holds", LastActive: daysAgo(1), StoredStreak: 5, ExpectedCurrent: 5},
		{Desc: "two day gap collapses to zero", LastActive: daysAgo(2), StoredStreak: 5, ExpectedCurrent: 0},
		{Desc: "long gap collapses to zero", LastActive: daysAgo(30), StoredStreak: 12, ExpectedCurrent: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
				UserID:         uid,
				CurrentStreak:  tc.StoredStreak,
				LongestStreak:  12,
				LastActiveDate: tc.LastActive,
			}, nil)
			activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(50, nil)
			activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
				Return([]entity.DailyActivity{}, nil)

			data, err := serv.GetStreakData(context.Background(), uid)
			require.NoError(t, err)
			assert.Equal(t, tc.ExpectedCurrent, data.CurrentStreak)
			// Longest streak survives a broken chain
			assert.Equal(t, 12, data.LongestStreak)
		})
	}
}

func TestForceRecomputeCollapsesStaleStreak(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()
	stale := &entity.StreakState{
		UserID:         uid,
		CurrentStreak:  5,
		LongestStreak:  9,
		LastActiveDate: daysAgo(4),
	}

	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(stale, nil)
	streaksRepo.EXPECT().UpdateIfUnchanged(gomock.Any(), gomock.Any(), daysAgo(4)).DoAndReturn(
		func(_ context.Context, state *entity.StreakState, _ time.Time) error {
			assert.Equal(t, 0, state.CurrentStreak)
			assert.Equal(t, 9, state.LongestStreak)
			assert.Equal(t, daysAgo(4), state.LastActiveDate)
			return nil
		})
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(&entity.StreakState{
		UserID:         uid,
		CurrentStreak:  0,
		LongestStreak:  9,
		LastActiveDate: daysAgo(4),
	}, nil)
	activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(40, nil)
	activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
		Return([]entity.DailyActivity{}, nil)

	data, err := serv.ForceRecompute(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, 0, data.CurrentStreak)
	assert.Equal(t, 9, data.LongestStreak)
}

func TestForceRecomputeFreshStreakUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	activitiesRepo := mocks.NewMockActivitiesRepositoryI(ctrl)
	streaksRepo := mocks.NewMockStreaksRepositoryI(ctrl)
	serv := service.NewStreakService(activitiesRepo, streaksRepo)
	uid := uuid.New()
	state := &entity.StreakState{
		UserID:         uid,
		CurrentStreak:  5,
		LongestStreak:  9,
		LastActiveDate: today(),
	}

	// No UpdateIfUnchanged expected for a live streak
	streaksRepo.EXPECT().Get(gomock.Any(), uid).Return(state, nil).Times(2)
	activitiesRepo.EXPECT().CountByUserID(gomock.Any(), uid).Return(40, nil)
	activitiesRepo.EXPECT().DailyCounts(gomock.Any(), uid, gomock.Any(), gomock.Any()).
		Return([]entity.DailyActivity{}, nil)

	data, err := serv.ForceRecompute(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, 5, data.CurrentStreak)
}
