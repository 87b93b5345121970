// Package streak — repository.go выполняет операции с таблицами ledgers и completions.
package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record — строка таблицы ledgers в сыром виде.
// Разбор и проверка JSON — забота сервиса (DecodeLedger).
type Record struct {
	UserID    int64     `db:"user_id"`
	State     []byte    `db:"state"`            // JSON LedgerState
	Current   []byte    `db:"current_exercise"` // JSON CurrentExercise или NULL
	UpdatedAt time.Time `db:"updated_at"`
}

// Completion — одно выполнение упражнения (история).
type Completion struct {
	ID          uuid.UUID `db:"id"`
	UserID      int64     `db:"user_id"`
	ExerciseID  string    `db:"exercise_id"`
	Intensity   int       `db:"intensity"`
	Points      int       `db:"points"`
	CompletedOn time.Time `db:"completed_on"` // Дата (без времени)
	CreatedAt   time.Time `db:"created_at"`
}

// Repository предоставляет методы для работы с журналами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий журналов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Load возвращает журнал пользователя. found=false — журнала ещё нет.
func (r *Repository) Load(ctx context.Context, userID int64) (*Record, bool, error) {
	query := `
		SELECT user_id, state, current_exercise, updated_at
		FROM ledgers
		WHERE user_id = $1
	`
	var rec Record
	err := r.db.QueryRow(ctx, query, userID).Scan(&rec.UserID, &rec.State, &rec.Current, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ошибка чтения журнала (user_id=%d): %w", userID, err)
	}
	return &rec, true, nil
}

// Save сохраняет журнал и текущее упражнение (upsert).
func (r *Repository) Save(ctx context.Context, userID int64, state, current []byte) error {
	query := `
		INSERT INTO ledgers (user_id, state, current_exercise, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET state = EXCLUDED.state,
		    current_exercise = EXCLUDED.current_exercise,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, state, current); err != nil {
		return fmt.Errorf("ошибка сохранения журнала: %w", err)
	}
	return nil
}

// SaveCompletion сохраняет журнал и добавляет запись в историю одной транзакцией.
func (r *Repository) SaveCompletion(ctx context.Context, userID int64, state, current []byte, c *Completion) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	// Откатываем транзакцию, если что-то пошло не так
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO ledgers (user_id, state, current_exercise, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET state = EXCLUDED.state,
		    current_exercise = EXCLUDED.current_exercise,
		    updated_at = NOW()
	`, userID, state, current)
	if err != nil {
		return fmt.Errorf("ошибка сохранения журнала: %w", err)
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO completions (id, user_id, exercise_id, intensity, points, completed_on)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, userID, c.ExerciseID, c.Intensity, c.Points, c.CompletedOn)
	if err != nil {
		return fmt.Errorf("ошибка записи истории: %w", err)
	}

	return tx.Commit(ctx)
}

// RecentCompletions возвращает последние limit выполнений пользователя.
func (r *Repository) RecentCompletions(ctx context.Context, userID int64, limit int) ([]*Completion, error) {
	query := `
		SELECT id, user_id, exercise_id, intensity, points, completed_on, created_at
		FROM completions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	var out []*Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.ID, &c.UserID, &c.ExerciseID, &c.Intensity, &c.Points, &c.CompletedOn, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// ListAll возвращает все журналы. Используется для таблицы лидеров:
// показываемый счёт зависит от "сегодня", поэтому сортирует сервис.
func (r *Repository) ListAll(ctx context.Context) ([]*Record, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, state, current_exercise, updated_at FROM ledgers`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журналов: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.UserID, &rec.State, &rec.Current, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// Delete удаляет журнал пользователя (сброс прогресса админом).
// История выполнений остаётся.
func (r *Repository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM ledgers WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка сброса журнала: %w", err)
	}
	return nil
}
