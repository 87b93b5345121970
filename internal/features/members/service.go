// Package members — service.go содержит бизнес-логику управления участниками.
// Сервис регистрирует пользователей и подставляет их имена в ответы бота.
package members

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/exercise-bot/internal/common"
)

// Store — хранилище участников. Реализуется Repository.
type Store interface {
	Create(ctx context.Context, m *Member) error
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error
	List(ctx context.Context) ([]*Member, error)
	Count(ctx context.Context) (int, error)
}

// Service управляет участниками.
type Service struct {
	repo Store
}

// NewService создаёт новый сервис участников.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// EnsureMember гарантирует, что пользователь есть в базе и его имя актуально.
// Вызывается на каждое сообщение, поэтому пишет в БД только при изменениях.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	info := UpdateInfo{Username: username, FirstName: firstName, LastName: lastName}

	existing, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if !existing.changed(info) {
			return nil
		}
		log.WithField("user_id", userID).Debug("Данные участника изменились, обновляем")
		return s.repo.UpdateInfo(ctx, userID, info)
	case errors.Is(err, common.ErrUserNotFound):
		// новый пользователь
	default:
		return err
	}

	member := &Member{UserID: userID, Username: username, FirstName: firstName, LastName: lastName}
	if err := s.repo.Create(ctx, member); err != nil {
		return fmt.Errorf("ошибка регистрации нового участника: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("Новый участник зарегистрирован")
	return nil
}

// List возвращает всех участников.
func (s *Service) List(ctx context.Context) ([]*Member, error) {
	return s.repo.List(ctx)
}

// Count возвращает число участников.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// DisplayName возвращает имя участника для таблицы лидеров.
// Если участника нет в базе — "id<число>".
func (s *Service) DisplayName(ctx context.Context, userID int64) string {
	m, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrUserNotFound) {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось получить имя участника")
		}
		return fmt.Sprintf("id%d", userID)
	}
	return m.DisplayName()
}
