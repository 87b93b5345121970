// Package reminders — repository.go работает с таблицей reminder_settings.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с настройками напоминаний.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий напоминаний.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get возвращает настройки пользователя. found=false — настроек ещё нет.
func (r *Repository) Get(ctx context.Context, userID int64) (*Settings, bool, error) {
	query := `
		SELECT user_id, enabled, remind_at, last_sent_on, updated_at
		FROM reminder_settings
		WHERE user_id = $1
	`
	var s Settings
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.Enabled, &s.RemindAt, &s.LastSentOn, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ошибка чтения напоминаний (user_id=%d): %w", userID, err)
	}
	return &s, true, nil
}

// Upsert сохраняет настройки пользователя.
func (r *Repository) Upsert(ctx context.Context, s *Settings) error {
	query := `
		INSERT INTO reminder_settings (user_id, enabled, remind_at, last_sent_on, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    remind_at = EXCLUDED.remind_at,
		    last_sent_on = EXCLUDED.last_sent_on,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, s.UserID, s.Enabled, s.RemindAt, s.LastSentOn); err != nil {
		return fmt.Errorf("ошибка сохранения напоминаний: %w", err)
	}
	return nil
}

// ListDue возвращает включённые напоминания, время которых наступило (remind_at <= clock),
// и которые ещё не отправлялись в день today.
// remind_at хранится как "ЧЧ:ММ" с ведущими нулями, поэтому строки сравниваются как время.
func (r *Repository) ListDue(ctx context.Context, clock string, today time.Time) ([]*Settings, error) {
	query := `
		SELECT user_id, enabled, remind_at, last_sent_on, updated_at
		FROM reminder_settings
		WHERE enabled = TRUE
		  AND remind_at <= $1
		  AND (last_sent_on IS NULL OR last_sent_on < $2)
		ORDER BY user_id
	`
	rows, err := r.db.Query(ctx, query, clock, today)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса напоминаний: %w", err)
	}
	defer rows.Close()

	var out []*Settings
	for rows.Next() {
		var s Settings
		if err := rows.Scan(&s.UserID, &s.Enabled, &s.RemindAt, &s.LastSentOn, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// MarkSent запоминает, что сегодня напоминание уже было.
func (r *Repository) MarkSent(ctx context.Context, userID int64, day time.Time) error {
	query := `UPDATE reminder_settings SET last_sent_on = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, day); err != nil {
		return fmt.Errorf("ошибка отметки напоминания: %w", err)
	}
	return nil
}
