package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resham-cricketer/pkg/auth"
	"resham-cricketer/pkg/clips"
	"resham-cricketer/pkg/database"
	"resham-cricketer/pkg/engagement"
	"resham-cricketer/pkg/feed"
	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/metrics"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/notify"
	"resham-cricketer/pkg/profile"
	"resham-cricketer/pkg/store"
)

const driveURL = "https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing"

type testServer struct {
	router *gin.Engine
	store  *store.Store
	hub    *live.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	hub := live.NewHub(logger)
	s := store.New(db, hub)
	m := metrics.New()
	tokens := auth.NewTokens("test-secret", time.Hour)
	notifier := notify.NewNotifier(s, m, logger)
	agg := feed.NewAggregator(s, hub, 0, logger)
	svc := clips.NewService(s, notifier, logger)

	h := New(Deps{
		Store:     s,
		Hub:       hub,
		Accounts:  auth.NewAccounts(s, tokens, logger),
		Tokens:    tokens,
		Identity:  auth.NewIdentityVerifier("bridge-secret"),
		Feed:      agg,
		Clips:     svc,
		Counters:  engagement.NewCounters(s, notifier, m, logger),
		Profiles:  profile.NewSynchronizer(s, m, logger),
		ReadState: notify.NewReadState(notify.NewMemoryKV()),
		Metrics:   m,
		Logger:    logger,
	})
	return &testServer{router: h.Router(), store: s, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) signup(t *testing.T, email, name string) auth.Session {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/signup", "", gin.H{"email": email, "password": "secret1", "displayName": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[auth.Session](t, w)
}

func (ts *testServer) publish(t *testing.T, token, title string) models.Video {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/videos", token, gin.H{"url": driveURL, "title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Video](t, w)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/videos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/videos", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "tamim@example.com", "Tamim")

	w := ts.do(t, http.MethodPost, "/login", "", gin.H{"email": "tamim@example.com", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/signup", "", gin.H{"email": "tamim@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/login", "", gin.H{"email": "tamim@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[auth.Session](t, w).Token)
}

func TestPublishWatchLikeFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "Alice")
	bob := ts.signup(t, "bob@example.com", "Bob")

	v := ts.publish(t, alice.Token, "Cover Drive")
	assert.Equal(t, "Alice", v.UploaderName)
	assert.Equal(t, alice.UID, v.UploaderID)

	w := ts.do(t, http.MethodGet, "/videos?q=cover", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Videos []models.Video }](t, w)
	require.Len(t, list.Videos, 1)

	w = ts.do(t, http.MethodGet, "/videos/"+v.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[engagement.WatchPage](t, w)
	assert.Contains(t, page.EmbedURL, "/preview")
	assert.False(t, page.Like.Liked)

	stored, err := ts.store.GetVideo(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)

	w = ts.do(t, http.MethodPost, "/videos/"+v.ID+"/like", bob.Token, page.Like)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, engagement.LikeState{Liked: true, Count: 1}, decode[engagement.LikeState](t, w))

	w = ts.do(t, http.MethodGet, "/notifications", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[notificationsView](t, w)
	assert.Equal(t, 2, view.UnreadCount, "upload broadcast and bob's like")
	assert.Nil(t, view.LastReadAt)
	require.Len(t, view.Today, 2)
	var like *notificationItem
	for i := range view.Today {
		if view.Today[i].Type == models.NotificationLike {
			like = &view.Today[i]
		}
	}
	require.NotNil(t, like)
	assert.Equal(t, "Bob", like.ActorName)
	assert.True(t, like.Unread)

	w = ts.do(t, http.MethodPost, "/notifications/read", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/notifications", alice.Token, nil)
	view = decode[notificationsView](t, w)
	assert.Equal(t, 0, view.UnreadCount)
	assert.NotNil(t, view.LastReadAt)

	w = ts.do(t, http.MethodGet, "/notifications", bob.Token, nil)
	view = decode[notificationsView](t, w)
	assert.Equal(t, 1, view.UnreadCount, "bob only sees the broadcast")
}

func TestOwnerOnlyClipManagement(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "Alice")
	bob := ts.signup(t, "bob@example.com", "Bob")
	v := ts.publish(t, alice.Token, "Pull Shot")

	w := ts.do(t, http.MethodPut, "/videos/"+v.ID, bob.Token, gin.H{"title": "Mine now", "url": driveURL})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodDelete, "/videos/"+v.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/manage/videos", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct{ Videos []models.Video }](t, w).Videos, 1)

	w = ts.do(t, http.MethodDelete, "/videos/"+v.ID, alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/videos/"+v.ID, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileEditSyncsClips(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "Alice")
	bob := ts.signup(t, "bob@example.com", "Bob")
	first := ts.publish(t, alice.Token, "Cut")
	ts.publish(t, alice.Token, "Sweep")
	other := ts.publish(t, bob.Token, "Yorker")

	update := gin.H{"displayName": "Alicia", "photoURL": "https://img/alicia.png", "username": "Alicia K", "bio": "opener"}
	w := ts.do(t, http.MethodPut, "/users/"+alice.UID, bob.Token, update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPut, "/users/"+alice.UID, alice.Token, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alicia", decode[models.UserProfile](t, w).DisplayName)

	v, err := ts.store.GetVideo(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", v.UploaderName)
	require.NotNil(t, v.UploaderAvatar)
	assert.Equal(t, "https://img/alicia.png", *v.UploaderAvatar)

	untouched, err := ts.store.GetVideo(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", untouched.UploaderName)

	w = ts.do(t, http.MethodGet, "/users/"+alice.UID, bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[profile.Page](t, w)
	assert.Len(t, page.Clips, 2)
	assert.False(t, page.IsOwn)
	assert.Equal(t, "aliciak", page.Handle)
}

func TestStatsCountsClipsPlayersViews(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "Alice")
	v := ts.publish(t, alice.Token, "Cut")
	ts.do(t, http.MethodGet, "/videos/"+v.ID, alice.Token, nil)

	w := ts.do(t, http.MethodGet, "/stats", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Stats     feed.Stats
		Formatted map[string]string
	}](t, w)
	assert.Equal(t, feed.Stats{Clips: 1, Players: 1, Views: 1}, body.Stats)
	assert.Equal(t, "1", body.Formatted["clips"])
}

func TestLiveStatsPushesOnChange(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "Alice")

	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live/stats?token=" + alice.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	type snapshot struct {
		Stats feed.Stats `json:"stats"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, int64(0), first.Stats.Clips)

	ts.publish(t, alice.Token, "Cut")

	for {
		var next snapshot
		require.NoError(t, conn.ReadJSON(&next))
		if next.Stats.Clips == 1 {
			break
		}
	}
}

func TestListVideosLimitIsBounded(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "Alice")
	for i := 0; i < feed.DefaultMaxVideos+3; i++ {
		ts.publish(t, alice.Token, "Drive")
	}

	w := ts.do(t, http.MethodGet, "/videos?limit=100000", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct{ Videos []models.Video }](t, w).Videos, feed.DefaultMaxVideos)

	w = ts.do(t, http.MethodGet, "/videos?limit=5", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct{ Videos []models.Video }](t, w).Videos, 5)
}

func TestLiveViewsReleaseSubscriptionOnDisconnect(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signup(t, "alice@example.com", "Alice")

	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	for _, path := range []string{"/live/stats", "/live/notifications"} {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + path + "?token=" + alice.Token
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err, path)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var snapshot map[string]any
		require.NoError(t, conn.ReadJSON(&snapshot), path)
		assert.Equal(t, 1, ts.hub.Len(), path)

		require.NoError(t, conn.Close())
		assert.Eventually(t, func() bool { return ts.hub.Len() == 0 }, 5*time.Second, 10*time.Millisecond,
			"%s left a subscription open", path)
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit(1, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
