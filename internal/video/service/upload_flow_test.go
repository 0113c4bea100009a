package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/DevSsChar/SnapCast/internal/video/domain"
	"github.com/DevSsChar/SnapCast/internal/video/guard"
	"github.com/DevSsChar/SnapCast/internal/video/models"
	"github.com/DevSsChar/SnapCast/internal/video/repository"
	"github.com/DevSsChar/SnapCast/internal/video/stream"
)

// fakeStore is an in-process object store for end-to-end flow tests. Client
// uploads are simulated with markUploaded.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	uploaded map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploaded: make(map[string]bool)}
}

func (s *fakeStore) AllocateVideo(ctx context.Context) (*stream.VideoTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("v%d", s.nextID)
	return &stream.VideoTarget{
		VideoID:   id,
		UploadURL: "https://stream/videos/" + id,
		AccessKey: "stream-key",
	}, nil
}

func (s *fakeStore) markUploaded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[id] = true
}

func (s *fakeStore) VideoExists(ctx context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploaded[videoID], nil
}

func (s *fakeStore) AllocateThumbnail(ctx context.Context, videoID string) (*stream.ThumbnailTarget, error) {
	return &stream.ThumbnailTarget{
		UploadURL: "https://storage/thumbnails/" + videoID + "-thumb",
		CDNURL:    "https://cdn/thumbnails/" + videoID + "-thumb",
		AccessKey: "storage-key",
	}, nil
}

func (s *fakeStore) SetVideoMeta(ctx context.Context, videoID, title, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.uploaded[videoID] {
		return models.ErrNotFound
	}
	return nil
}

func (s *fakeStore) DeleteVideo(ctx context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploaded, videoID)
	return nil
}

func (s *fakeStore) PlaybackURL(videoID string) string {
	return "https://embed/lib/" + videoID
}

func newFlowService(t *testing.T) (*Service, *repository.MemoryRepository, *fakeStore) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	store := newFakeStore()
	gate := guard.NewGateway(guard.NewMemoryEngine(), zerolog.Nop())
	return New(repo, store, gate, nil, zerolog.Nop()), repo, store
}

func TestUploadFlow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newFlowService(t)
	user := uuid.New()

	// Step 1: allocate the video target.
	target, err := svc.RequestVideoTarget(ctx, user)
	require.NoError(t, err)
	require.Equal(t, "v1", target.VideoID)
	require.NotEmpty(t, target.UploadURL)
	require.NotEmpty(t, target.AccessKey)

	// Step 2: the client streams bytes to the target.
	store.markUploaded("v1")

	// Step 3: allocate the thumbnail target.
	thumb, err := svc.RequestThumbnailTarget(ctx, user, "v1")
	require.NoError(t, err)
	require.Equal(t, "https://cdn/thumbnails/v1-thumb", thumb.CDNURL)

	// Step 4: finalize persists the metadata row.
	v, err := svc.Finalize(ctx, user, FinalizeInput{
		ExternalVideoID: "v1",
		Title:           "T",
		Description:     "D",
		Visibility:      models.Public,
		ThumbnailURL:    thumb.CDNURL,
		Duration:        42,
	})
	require.NoError(t, err)

	got, err := svc.GetVideo(ctx, uuid.Nil, v.ID)
	require.NoError(t, err)
	require.Equal(t, thumb.CDNURL, got.ThumbnailURL)
	require.Equal(t, 42, got.Duration)
	require.Equal(t, int64(0), got.Views)
	require.Equal(t, "https://embed/lib/v1", got.VideoURL)

	// Two sequential views count twice: at-least-once, no dedup here.
	views, err := svc.RecordView(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), views)
	views, err = svc.RecordView(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), views)
}

func TestUploadFlow_ThirdFinalizeWithinMinuteDenied(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newFlowService(t)
	user := uuid.New()

	finalize := func(ext string) error {
		store.markUploaded(ext)
		_, err := svc.Finalize(ctx, user, FinalizeInput{
			ExternalVideoID: ext,
			Title:           "T",
			Description:     "D",
			Visibility:      models.Public,
			ThumbnailURL:    "https://cdn/t",
			Duration:        1,
		})
		return err
	}

	require.NoError(t, finalize("a1"))
	require.NoError(t, finalize("a2"))
	// Mutation policy: max 2 finalize calls per fingerprint per minute.
	require.ErrorIs(t, finalize("a3"), models.ErrRateLimited)

	// The denied finalize persisted nothing.
	page, err := svc.ListVideos(ctx, "", domain.SortNewest, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Videos, 2)
}

func TestUploadFlow_AbandonedSessionLeavesNoRow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFlowService(t)
	user := uuid.New()

	// Target issued, client never uploads, session abandoned.
	_, err := svc.RequestVideoTarget(ctx, user)
	require.NoError(t, err)

	page, err := svc.ListVideos(ctx, "", domain.SortNewest, 1, 10)
	require.NoError(t, err)
	require.Empty(t, page.Videos)
}

func TestGallery_PrivateNeverListed(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newFlowService(t)

	owner := uuid.New()
	repo.PutUser(&models.Owner{ID: owner, Name: "A", Image: "img", Email: "a@example.com"})
	now := time.Now()
	seed := func(title string, vis models.Visibility) uuid.UUID {
		id := uuid.New()
		require.NoError(t, repo.Create(ctx, &models.Video{
			ID: id, ExternalID: id.String(), OwnerID: owner,
			Title: title, Description: "d", Visibility: vis,
			CreatedAt: now, UpdatedAt: now,
		}))
		return id
	}

	seed("public clip", models.Public)
	privateID := seed("private clip", models.Private)

	// The unscoped gallery is public-only for every requester, the owner
	// included.
	page, err := svc.ListVideos(ctx, "", domain.SortNewest, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	require.Equal(t, "public clip", page.Videos[0].Title)

	// The owner still sees the private video on their own profile; strangers
	// do not.
	mine, err := svc.ListByOwner(ctx, owner, owner, "", domain.SortNewest)
	require.NoError(t, err)
	require.Len(t, mine.Videos, 2)

	theirs, err := svc.ListByOwner(ctx, uuid.New(), owner, "", domain.SortNewest)
	require.NoError(t, err)
	require.Len(t, theirs.Videos, 1)
	require.NotEqual(t, privateID, theirs.Videos[0].ID)
}
