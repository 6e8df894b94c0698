package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BroadcastTarget is the targetUserId of notifications every viewer receives.
const BroadcastTarget = "all"

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

type VideoStatus string

const (
	StatusProcessing VideoStatus = "processing"
	StatusLive       VideoStatus = "live"
	StatusFailed     VideoStatus = "failed"
)

type NotificationType string

const (
	NotificationUpload NotificationType = "upload"
	NotificationLike   NotificationType = "like"
)

// UserProfile is the users/{uid} document.
type UserProfile struct {
	UID         string     `gorm:"column:uid;primary_key" json:"uid"`
	DisplayName string     `json:"displayName"`
	Email       string     `gorm:"index" json:"email"`
	PhotoURL    *string    `gorm:"column:photo_url" json:"photoURL"`
	Username    string     `json:"username,omitempty"`
	Bio         string     `json:"bio"`
	Role        Role       `json:"role"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func (UserProfile) TableName() string { return "users" }

// Video is the videos/{id} document. UploaderName and UploaderAvatar are
// copies of the owner's profile kept current by profile.Synchronizer.
type Video struct {
	ID             string      `gorm:"primary_key" json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	URL            string      `json:"url"`
	ThumbnailURL   string      `json:"thumbnailUrl"`
	UploaderID     string      `gorm:"index" json:"uploaderId"`
	UploaderName   string      `json:"uploaderName"`
	UploaderAvatar *string     `json:"uploaderAvatar"`
	Views          int64       `json:"views"`
	Likes          int64       `json:"likes"`
	Duration       int64       `json:"duration"`
	Status         VideoStatus `json:"status"`
	Tags           Tags        `gorm:"type:text" json:"tags"`
	CreatedAt      *time.Time  `gorm:"index" json:"createdAt"`
}

// CreatedMillis returns createdAt in epoch milliseconds, 0 when unset.
func (v Video) CreatedMillis() int64 {
	return millis(v.CreatedAt)
}

// Notification is immutable once written.
type Notification struct {
	ID           string           `gorm:"primary_key" json:"id"`
	Type         NotificationType `json:"type"`
	ActorID      string           `json:"actorId"`
	ActorName    string           `json:"actorName"`
	ActorAvatar  *string          `json:"actorAvatar"`
	VideoID      string           `json:"videoId"`
	VideoTitle   string           `json:"videoTitle"`
	TargetUserID string           `gorm:"index" json:"targetUserId"`
	CreatedAt    *time.Time       `json:"createdAt"`
}

func (n Notification) CreatedMillis() int64 {
	return millis(n.CreatedAt)
}

// Credential holds the password hash for email sign-in. It lives outside the
// profile document so the hash is never served with it.
type Credential struct {
	UID          string `gorm:"column:uid;primary_key"`
	Email        string `gorm:"unique_index"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func millis(t *time.Time) int64 {
	if t == nil || t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the empty string for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Tags is a string list stored as a JSON array in a text column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	*t = Tags(list)
	return nil
}

// MarshalJSON renders a nil list as [].
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
