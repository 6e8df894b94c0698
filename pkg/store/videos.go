package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/models"
)

// VideoFields are the owner-editable video attributes.
type VideoFields struct {
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
}

func (s *Store) CreateVideo(ctx context.Context, v *models.Video) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	s.stamp(&v.CreatedAt)
	if err := s.db.Create(v).Error; err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	s.publish(live.Videos, v.ID, live.OpCreate)
	return nil
}

func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	if err := s.db.Where("id = ?", id).First(&v).Error; err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return &v, nil
}

func (s *Store) UpdateVideoFields(ctx context.Context, id string, f VideoFields) error {
	res := s.db.Model(&models.Video{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":         f.Title,
		"description":   f.Description,
		"url":           f.URL,
		"thumbnail_url": f.ThumbnailURL,
	})
	if res.Error != nil {
		return fmt.Errorf("update video %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(live.Videos, id, live.OpUpdate)
	return nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Video{})
	if res.Error != nil {
		return fmt.Errorf("delete video %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(live.Videos, id, live.OpDelete)
	return nil
}

// IncrementViews adds one to the stored view count in the database itself,
// so concurrent viewers never overwrite each other.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res := s.db.Model(&models.Video{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment views %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.publish(live.Videos, id, live.OpUpdate)
	return nil
}

// LatestVideos returns at most limit videos, newest first. Videos without
// a createdAt are skipped, since dialects disagree on where NULLs sort.
func (s *Store) LatestVideos(ctx context.Context, limit int) ([]models.Video, error) {
	var videos []models.Video
	err := s.db.Where("created_at IS NOT NULL").Order("created_at desc").Limit(limit).Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("latest videos: %w", err)
	}
	return videos, nil
}

// VideosByUploader returns the uploader's videos in no particular order.
func (s *Store) VideosByUploader(ctx context.Context, uid string) ([]models.Video, error) {
	var videos []models.Video
	if err := s.db.Where("uploader_id = ?", uid).Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("videos by uploader %s: %w", uid, err)
	}
	return videos, nil
}

// VideoStats returns the number of videos and their summed views.
func (s *Store) VideoStats(ctx context.Context) (count int64, views int64, err error) {
	row := s.db.Model(&models.Video{}).Select("COUNT(*), COALESCE(SUM(views), 0)").Row()
	if err := row.Scan(&count, &views); err != nil {
		return 0, 0, fmt.Errorf("video stats: %w", err)
	}
	return count, views, nil
}

// SyncUploaderIdentity rewrites uploaderName and uploaderAvatar on every
// listed video in one transaction. A missing video fails the whole batch.
func (s *Store) SyncUploaderIdentity(ctx context.Context, ids []string, name string, avatar *string) error {
	if len(ids) == 0 {
		return nil
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin batch: %w", tx.Error)
	}
	for _, id := range ids {
		res := tx.Model(&models.Video{}).Where("id = ?", id).Updates(map[string]interface{}{
			"uploader_name":   name,
			"uploader_avatar": avatar,
		})
		if res.Error != nil {
			tx.Rollback()
			return fmt.Errorf("batch update video %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return fmt.Errorf("batch update video %s: %w", id, ErrNotFound)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	for _, id := range ids {
		s.publish(live.Videos, id, live.OpUpdate)
	}
	return nil
}
