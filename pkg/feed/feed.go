// Package feed derives the ordered and filtered views the UI shows.
//
// Sorting and filtering run in memory over what the store returned, which
// keeps the store free of compound indexes. Callers only see Aggregator, so
// an indexed query can replace the scan without touching them.
package feed

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"resham-cricketer/pkg/models"
)

// DefaultMaxVideos bounds the latest-clips feed.
const DefaultMaxVideos = 24

// SortVideosNewest returns a copy of videos ordered by createdAt, newest
// first. Videos without a timestamp count as time zero. Ties keep their
// input order.
func SortVideosNewest(videos []models.Video) []models.Video {
	out := append([]models.Video(nil), videos...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedMillis() > out[j].CreatedMillis()
	})
	return out
}

// SortNotificationsNewest is SortVideosNewest for notifications.
func SortNotificationsNewest(list []models.Notification) []models.Notification {
	out := append([]models.Notification(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedMillis() > out[j].CreatedMillis()
	})
	return out
}

// Search keeps the videos whose title, uploader name or description contains
// query, ignoring case. An empty query keeps everything.
func Search(videos []models.Video, query string) []models.Video {
	q := strings.ToLower(query)
	out := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if strings.Contains(strings.ToLower(v.Title), q) ||
			strings.Contains(strings.ToLower(v.UploaderName), q) ||
			(v.Description != "" && strings.Contains(strings.ToLower(v.Description), q)) {
			out = append(out, v)
		}
	}
	return out
}

// SearchTitles matches on title only, as the clip management list does.
func SearchTitles(videos []models.Video, query string) []models.Video {
	q := strings.ToLower(query)
	out := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if strings.Contains(strings.ToLower(v.Title), q) {
			out = append(out, v)
		}
	}
	return out
}

// Partition splits notifications into those created on now's calendar day
// in loc and the rest. Notifications without a timestamp are earlier.
// Input order is preserved in both halves.
func Partition(list []models.Notification, now time.Time, loc *time.Location) (today, earlier []models.Notification) {
	today = []models.Notification{}
	earlier = []models.Notification{}
	y, m, d := now.In(loc).Date()
	for _, n := range list {
		if n.CreatedAt != nil {
			ny, nm, nd := n.CreatedAt.In(loc).Date()
			if ny == y && nm == m && nd == d {
				today = append(today, n)
				continue
			}
		}
		earlier = append(earlier, n)
	}
	return today, earlier
}

// TotalViews sums views across videos.
func TotalViews(videos []models.Video) int64 {
	var total int64
	for _, v := range videos {
		total += v.Views
	}
	return total
}

// FormatStat renders a counter the way the home page shows it.
func FormatStat(n int64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM+", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK+", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
