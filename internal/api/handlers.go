package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	errorvalues "github.com/collabspace/pulse/internal/error_values"
	"github.com/collabspace/pulse/internal/service"
	"github.com/collabspace/pulse/pkg/entity"
	"github.com/collabspace/pulse/pkg/httputil"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RecordActivityRequest struct {
	ActivityType string         `json:"activityType"`
	Details      map[string]any `json:"details,omitempty"`
}

type StreakResponse struct {
	Success             bool                   `json:"success"`
	CurrentStreak       int                    `json:"currentStreak"`
	LongestStreak       int                    `json:"longestStreak"`
	TotalActivities     int                    `json:"totalActivities"`
	LastActiveDate      string                 `json:"lastActiveDate"`
	ActivityCalendar    []entity.DailyActivity `json:"activityCalendar"`
	MotivationalMessage string                 `json:"motivationalMessage"`
}

type DebugResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func newStreakResponse(data *entity.StreakData) StreakResponse {
	return StreakResponse{
		Success:             true,
		CurrentStreak:       data.CurrentStreak,
		LongestStreak:       data.LongestStreak,
		TotalActivities:     data.TotalActivities,
		LastActiveDate:      data.LastActiveDate.Format(time.DateOnly),
		ActivityCalendar:    data.ActivityCalendar,
		MotivationalMessage: service.MotivationalMessage(data.CurrentStreak),
	}
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req RegisterRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("registering error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.userService.Register(ctx, &service.RegisterRequest{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserExists) {
			logger.Error("registering error: existed user")
			httputil.WriteErrorResponse(w, http.StatusConflict, "user with such name already exists", nil)
			return
		}
		logger.Error("registering error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during registration", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"uid":     user.ID.String(),
	})
	logger.Info("successful registration")
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.userService.Login(ctx, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("login error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "user with such name doesn't exist", nil)
			return
		case errors.Is(err, errorvalues.ErrWrongCredentials):
			logger.Error("login error: wrong password")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "invalid username or password", nil)
			return
		default:
			logger.Error("login error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during login", nil)
			return
		}
	}
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		logger.Error("login error: generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"uid":     user.ID.String(),
		"token":   token,
	})
	logger.Info("successful login")
}

func (s *Server) GetStreakData(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get streak data error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	data, err := s.streakService.GetStreakData(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStreakNotFound) {
			logger.Error("get streak data error: no streak state")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "No streak data found", nil)
			return
		}
		logger.Error("get streak data error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting streak data", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, newStreakResponse(data))
	logger.Info("streak data provided")
}

func (s *Server) RecordActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("record activity error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req RecordActivityRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("record activity error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.ActivityType == "" {
		logger.Error("record activity error: missing activity type")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "Activity type is required", nil)
		return
	}
	s.recordAndRespond(w, r, uid, &service.RecordActivityRequest{
		ActivityType: req.ActivityType,
		Details:      req.Details,
	})
}

// TestActivity is a diagnostic hook for test harnesses: it records a fixed
// "test" activity for the caller and otherwise behaves exactly like
// RecordActivity.
func (s *Server) TestActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("test activity error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	s.recordAndRespond(w, r, uid, &service.RecordActivityRequest{
		ActivityType: "test",
		Details:      map[string]any{"source": "diagnostic"},
	})
}

func (s *Server) recordAndRespond(w http.ResponseWriter, r *http.Request, uid uuid.UUID, req *service.RecordActivityRequest) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	data, err := s.streakService.RecordActivity(ctx, uid, req)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrUnknownActivityType):
			logger.Error("record activity error: unknown activity type")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "Unknown activity type", nil)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("record activity error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't record activity: user doesn't exists", nil)
		default:
			logger.Error("record activity error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while recording activity", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, newStreakResponse(data))
	logger.Info("activity recorded")
}

// ForceUpdate persists a collapsed streak instead of only reporting it.
// Diagnostic endpoint, same response contract as GetStreakData.
func (s *Server) ForceUpdate(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("force update error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	data, err := s.streakService.ForceRecompute(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrStreakNotFound) {
			logger.Error("force update error: no streak state")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "No streak data found", nil)
			return
		}
		logger.Error("force update error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating streak", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, newStreakResponse(data))
	logger.Info("streak force-updated")
}

func (s *Server) Debug(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONResponse(w, http.StatusOK, DebugResponse{
		Success:   true,
		Message:   "Server is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
