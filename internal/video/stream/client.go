package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevSsChar/SnapCast/internal/video/models"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	// StreamBaseURL is the video stream API root, e.g. https://video.example.
	StreamBaseURL string
	LibraryID     string
	// StorageBaseURL accepts direct PUTs of thumbnail files.
	StorageBaseURL string
	// CDNBaseURL is the public root thumbnails are served from.
	CDNBaseURL string
	// EmbedBaseURL is the public playback root for videos.
	EmbedBaseURL string
	StreamKey    string
	StorageKey   string
	Timeout      time.Duration
}

func (c Config) validate() error {
	if c.StreamBaseURL == "" || c.LibraryID == "" {
		return fmt.Errorf("stream base url and library id are required")
	}
	if c.StorageBaseURL == "" || c.CDNBaseURL == "" || c.EmbedBaseURL == "" {
		return fmt.Errorf("storage, cdn and embed base urls are required")
	}
	return nil
}

// Client drives a stream-API style object store: videos are allocated
// through the library API and thumbnails go to a storage zone fronted by a
// CDN. The client only allocates targets and pushes metadata; raw bytes are
// streamed by the caller directly to the returned upload URLs.
type Client struct {
	cfg    Config
	http   *http.Client
	clock  func() time.Time
	logger zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		clock:  time.Now,
		logger: logger.With().Str("component", "stream_client").Logger(),
	}, nil
}

func (c *Client) videosURL(videoID string) string {
	u := fmt.Sprintf("%s/library/%s/videos", c.cfg.StreamBaseURL, c.cfg.LibraryID)
	if videoID != "" {
		u += "/" + videoID
	}
	return u
}

func (c *Client) AllocateVideo(ctx context.Context) (*VideoTarget, error) {
	// The store wants a title at creation time; the real one is pushed at
	// finalize.
	var out struct {
		GUID string `json:"guid"`
	}
	err := c.call(ctx, http.MethodPost, c.videosURL(""), map[string]string{"title": "Untitled"}, &out)
	if err != nil {
		return nil, err
	}
	if out.GUID == "" {
		return nil, fmt.Errorf("allocate video: empty guid: %w", models.ErrUpstream)
	}

	c.logger.Debug().Str("video_id", out.GUID).Msg("video target allocated")

	return &VideoTarget{
		VideoID:   out.GUID,
		UploadURL: c.videosURL(out.GUID),
		AccessKey: c.cfg.StreamKey,
	}, nil
}

func (c *Client) VideoExists(ctx context.Context, videoID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.videosURL(videoID), nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("AccessKey", c.cfg.StreamKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("stream api: %w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("stream api status %d: %w", resp.StatusCode, models.ErrUpstream)
	}
}

// AllocateThumbnail builds a storage path unique to this allocation. The CDN
// URL shares the path and is permanent from here on.
func (c *Client) AllocateThumbnail(ctx context.Context, videoID string) (*ThumbnailTarget, error) {
	filename := fmt.Sprintf("%d-%s-thumbnail", c.clock().UnixMilli(), videoID)
	return &ThumbnailTarget{
		UploadURL: fmt.Sprintf("%s/thumbnails/%s", c.cfg.StorageBaseURL, filename),
		CDNURL:    fmt.Sprintf("%s/thumbnails/%s", c.cfg.CDNBaseURL, filename),
		AccessKey: c.cfg.StorageKey,
	}, nil
}

func (c *Client) SetVideoMeta(ctx context.Context, videoID, title, description string) error {
	body := map[string]string{"title": title, "description": description}
	return c.call(ctx, http.MethodPost, c.videosURL(videoID), body, nil)
}

func (c *Client) DeleteVideo(ctx context.Context, videoID string) error {
	return c.call(ctx, http.MethodDelete, c.videosURL(videoID), nil, nil)
}

func (c *Client) PlaybackURL(videoID string) string {
	return fmt.Sprintf("%s/%s/%s", c.cfg.EmbedBaseURL, c.cfg.LibraryID, videoID)
}

func (c *Client) call(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("AccessKey", c.cfg.StreamKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stream api: %w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stream api status %d: %w", resp.StatusCode, models.ErrUpstream)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
