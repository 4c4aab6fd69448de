package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	errorvalues "github.com/collabspace/pulse/internal/error_values"
	"github.com/collabspace/pulse/pkg/cleanup"
	"github.com/collabspace/pulse/pkg/entity"
)

type ActivitiesRepository struct {
	conn PgConnection
}

func NewActivitiesRepo(cfg DBConfig) *ActivitiesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for activitiesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &ActivitiesRepository{
		conn: pool,
	}
}

func NewActivitiesRepoWithConn(conn PgConnection) *ActivitiesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	return &ActivitiesRepository{
		conn: conn,
	}
}

func (ar *ActivitiesRepository) Create(ctx context.Context, record *entity.ActivityRecord) error {
	if record == nil {
		return errors.New("activity record is nil")
	}
	_, err := ar.conn.Exec(
		ctx,
		`INSERT INTO activities (user_id, activity_type, details, occurred_at) VALUES ($1, $2, $3, $4);`,
		record.UserID,
		record.ActivityType,
		record.Details,
		record.OccurredAt,
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
		return errors.New("creating activity error: " + err.Error())
	}
	return nil
}

func (ar *ActivitiesRepository) DailyCounts(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]entity.DailyActivity, error) {
	rows, err := ar.conn.Query(
		ctx,
		`SELECT to_char((occurred_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day, COUNT(*) FROM activities WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3 GROUP BY day ORDER BY day;`,
		uid,
		from,
		to,
	)
	if err != nil {
		return nil, errors.New("getting daily activity counts error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.DailyActivity, 0)
	for rows.Next() {
		day := entity.DailyActivity{}
		err = rows.Scan(&day.Date, &day.Count)
		if err != nil {
			return nil, errors.New("daily count row parsing error: " + err.Error())
		}
		result = append(result, day)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected daily count rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (ar *ActivitiesRepository) CountByUserID(ctx context.Context, uid uuid.UUID) (int, error) {
	row := ar.conn.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM activities WHERE user_id = $1;`,
		uid,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("error counting activities: " + err.Error())
	}
	return count, nil
}
