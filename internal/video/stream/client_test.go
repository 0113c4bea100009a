package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevSsChar/SnapCast/internal/video/models"
)

func newTestClient(t *testing.T, streamURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		StreamBaseURL:  streamURL,
		LibraryID:      "lib-1",
		StorageBaseURL: "https://storage.example",
		CDNBaseURL:     "https://cdn.example",
		EmbedBaseURL:   "https://embed.example",
		StreamKey:      "stream-key",
		StorageKey:     "storage-key",
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestAllocateVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/library/lib-1/videos", r.URL.Path)
		assert.Equal(t, "stream-key", r.Header.Get("AccessKey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Untitled", body["title"])

		json.NewEncoder(w).Encode(map[string]string{"guid": "vid-42"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	target, err := c.AllocateVideo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vid-42", target.VideoID)
	assert.Equal(t, srv.URL+"/library/lib-1/videos/vid-42", target.UploadURL)
	assert.Equal(t, "stream-key", target.AccessKey)
}

func TestAllocateVideo_EmptyGUID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.AllocateVideo(context.Background())
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestVideoExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library/lib-1/videos/present":
			w.WriteHeader(http.StatusOK)
		case "/library/lib-1/videos/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	ok, err := c.VideoExists(context.Background(), "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.VideoExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.VideoExists(context.Background(), "broken")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestAllocateThumbnail_Deterministic(t *testing.T) {
	c := newTestClient(t, "https://stream.example")
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.clock = func() time.Time { return at }

	target, err := c.AllocateThumbnail(context.Background(), "vid-42")
	require.NoError(t, err)

	want := "/thumbnails/1740830400000-vid-42-thumbnail"
	assert.Equal(t, "https://storage.example"+want, target.UploadURL)
	assert.Equal(t, "https://cdn.example"+want, target.CDNURL)
	assert.Equal(t, "storage-key", target.AccessKey)
}

func TestSetVideoMeta(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/library/lib-1/videos/vid-42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	require.NoError(t, c.SetVideoMeta(context.Background(), "vid-42", "Demo", "A walkthrough"))
	assert.Equal(t, "Demo", got["title"])
	assert.Equal(t, "A walkthrough", got["description"])
}

func TestDeleteVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path != "/library/lib-1/videos/vid-42" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	require.NoError(t, c.DeleteVideo(context.Background(), "vid-42"))

	err := c.DeleteVideo(context.Background(), "gone")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestPlaybackURL(t *testing.T) {
	c := newTestClient(t, "https://stream.example")
	assert.Equal(t, "https://embed.example/lib-1/vid-42", c.PlaybackURL("vid-42"))
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{LibraryID: "lib-1"}, zerolog.Nop())
	assert.Error(t, err)
}
