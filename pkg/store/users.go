package store

import (
	"context"
	"fmt"

	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/models"
)

// ProfileFields are the user-editable profile attributes.
type ProfileFields struct {
	DisplayName string
	PhotoURL    *string
	Username    string
	Bio         string
}

func (s *Store) CreateUser(ctx context.Context, p *models.UserProfile) error {
	s.stamp(&p.CreatedAt)
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("create user %s: %w", p.UID, err)
	}
	s.publish(live.Users, p.UID, live.OpCreate)
	return nil
}

func (s *Store) GetUser(ctx context.Context, uid string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.db.Where("uid = ?", uid).First(&p).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	return &p, nil
}

// UpdateProfileFields writes all four fields in one update.
func (s *Store) UpdateProfileFields(ctx context.Context, uid string, f ProfileFields) error {
	res := s.db.Model(&models.UserProfile{}).Where("uid = ?", uid).Updates(map[string]interface{}{
		"display_name": f.DisplayName,
		"photo_url":    f.PhotoURL,
		"username":     f.Username,
		"bio":          f.Bio,
	})
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", uid, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(live.Users, uid, live.OpUpdate)
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.Model(&models.UserProfile{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CreateCredential stores the password hash for an email account.
func (s *Store) CreateCredential(ctx context.Context, c *models.Credential) error {
	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

// DeleteCredential removes uid's credential. A missing credential is not
// an error.
func (s *Store) DeleteCredential(ctx context.Context, uid string) error {
	if err := s.db.Where("uid = ?", uid).Delete(&models.Credential{}).Error; err != nil {
		return fmt.Errorf("delete credential %s: %w", uid, err)
	}
	return nil
}

func (s *Store) CredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var c models.Credential
	if err := s.db.Where("email = ?", email).First(&c).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &c, nil
}
