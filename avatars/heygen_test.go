package avatars

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HeyGenClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHeyGenClient("test-key")
	require.NoError(t, err)
	client.http.SetBaseURL(srv.URL)
	return client
}

func TestNewHeyGenClientRequiresAPIKey(t *testing.T) {
	_, err := NewHeyGenClient("")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreatePhotoAvatar(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/photo_avatar/photo/generate", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"avatar_id": "av_123"}}`))
	})

	id, err := client.CreatePhotoAvatar(context.Background(), "https://cdn.example/face.jpg", "Presenter")
	require.NoError(t, err)
	assert.Equal(t, "av_123", id)
}

func TestCreatePhotoAvatarProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": {"message": "image too small"}}`))
	})

	_, err := client.CreatePhotoAvatar(context.Background(), "https://cdn.example/face.jpg", "Presenter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image too small")
}

func TestCreateAvatarVideo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/video/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"video_id": "vid_456"}}`))
	})

	id, err := client.CreateAvatarVideo(context.Background(), "av_123", "voice_1", "Welcome to the module.")
	require.NoError(t, err)
	assert.Equal(t, "vid_456", id)
}

func TestVideoStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/video/vid_456", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"status": "completed", "video_url": "https://cdn.example/vid_456.mp4"}}`))
	})

	status, url, err := client.VideoStatus(context.Background(), "vid_456")
	require.NoError(t, err)
	assert.Equal(t, "completed", status)
	assert.Equal(t, "https://cdn.example/vid_456.mp4", url)
}
