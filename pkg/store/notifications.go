package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/models"
)

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	s.stamp(&n.CreatedAt)
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.publish(live.Notifications, n.ID, live.OpCreate)
	return nil
}

// NotificationsFor returns notifications addressed to any of targets, in no
// particular order.
func (s *Store) NotificationsFor(ctx context.Context, targets []string) ([]models.Notification, error) {
	var list []models.Notification
	if err := s.db.Where("target_user_id IN (?)", targets).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("notifications for %v: %w", targets, err)
	}
	return list, nil
}
