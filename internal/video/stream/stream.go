package stream

import "context"

// VideoTarget is what a client needs to PUT raw video bytes directly to the
// object store: the allocated external id, the write URL, and the access key
// authorizing a single authenticated upload.
type VideoTarget struct {
	VideoID   string
	UploadURL string
	AccessKey string
}

// ThumbnailTarget additionally carries the permanent public URL. CDNURL is
// fixed at allocation time and never re-derived.
type ThumbnailTarget struct {
	UploadURL string
	CDNURL    string
	AccessKey string
}

// ObjectStore is the binary/CDN store collaborator. Implementations must
// bound every remote call with a timeout; failed calls surface as errors
// wrapped in models.ErrUpstream and are never retried here.
type ObjectStore interface {
	AllocateVideo(ctx context.Context) (*VideoTarget, error)
	VideoExists(ctx context.Context, videoID string) (bool, error)
	AllocateThumbnail(ctx context.Context, videoID string) (*ThumbnailTarget, error)
	SetVideoMeta(ctx context.Context, videoID, title, description string) error
	DeleteVideo(ctx context.Context, videoID string) error
	PlaybackURL(videoID string) string
}
