package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DevSsChar/SnapCast/internal/video/domain"
	"github.com/DevSsChar/SnapCast/internal/video/guard"
	"github.com/DevSsChar/SnapCast/internal/video/models"
	"github.com/DevSsChar/SnapCast/internal/video/repository"
	"github.com/DevSsChar/SnapCast/internal/video/stream"
)

const DefaultPageSize = 8

// EventSink records lifecycle events for asynchronous consumers. Recording
// is best effort: a sink failure never fails the operation that produced
// the event.
type EventSink interface {
	Record(ctx context.Context, e models.DomainEvent) error
}

// Service orchestrates the video content lifecycle: upload protocol against
// the object store, metadata persistence with ownership and visibility
// rules, listing, and view counting. All collaborators are injected; there
// is no ambient state.
type Service struct {
	repo   repository.VideoRepository
	store  stream.ObjectStore
	gate   *guard.Gateway
	events EventSink
	clock  func() time.Time
	idGen  func() uuid.UUID
	logger zerolog.Logger
}

func New(repo repository.VideoRepository, store stream.ObjectStore, gate *guard.Gateway, events EventSink, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		gate:   gate,
		events: events,
		clock:  time.Now,
		idGen:  uuid.New,
		logger: logger.With().Str("component", "video_service").Logger(),
	}
}

// GuardSignIn gates a sign-in attempt with the authentication policy: the
// email must validate and attempts per fingerprint are capped. The identity
// provider performs the actual sign-in; this only decides whether the
// attempt may proceed.
func (s *Service) GuardSignIn(ctx context.Context, email, fingerprint string) error {
	if email == "" || fingerprint == "" {
		return models.ErrInvalidArgument
	}
	return s.gate.Allow(ctx, guard.AuthPolicy(), guard.Actor{Key: fingerprint, Email: email})
}

// RequestVideoTarget allocates a new external video id and returns the
// target the client streams raw bytes to. A failed allocation is never
// retried here: retrying would orphan a second remote id.
func (s *Service) RequestVideoTarget(ctx context.Context, requester uuid.UUID) (*stream.VideoTarget, error) {
	if requester == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}
	t, err := s.store.AllocateVideo(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate video target: %w", err)
	}
	return t, nil
}

// RequestThumbnailTarget allocates the thumbnail storage path for an already
// uploaded video. The returned CDN URL is permanent.
func (s *Service) RequestThumbnailTarget(ctx context.Context, requester uuid.UUID, externalVideoID string) (*stream.ThumbnailTarget, error) {
	if requester == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}
	if externalVideoID == "" {
		return nil, models.ErrInvalidArgument
	}

	ok, err := s.store.VideoExists(ctx, externalVideoID)
	if err != nil {
		return nil, fmt.Errorf("check video asset: %w", err)
	}
	if !ok {
		return nil, models.ErrNotFound
	}

	t, err := s.store.AllocateThumbnail(ctx, externalVideoID)
	if err != nil {
		return nil, fmt.Errorf("allocate thumbnail target: %w", err)
	}
	return t, nil
}

type FinalizeInput struct {
	ExternalVideoID string
	Title           string
	Description     string
	Visibility      models.Visibility
	ThumbnailURL    string
	// Duration is the client-probed value in seconds; non-finite and
	// non-positive probes are stored as 0 (unknown).
	Duration float64
}

// Finalize is the terminal upload step: it pushes title/description to the
// object store's own record, then inserts the metadata row. The row is
// written last, only after both assets were accepted remotely. Denial by the
// mutation policy short-circuits before anything is persisted.
func (s *Service) Finalize(ctx context.Context, requester uuid.UUID, in FinalizeInput) (*models.Video, error) {
	if requester == uuid.Nil {
		return nil, models.ErrUnauthenticated
	}
	if in.ExternalVideoID == "" || in.Title == "" || in.Description == "" || in.ThumbnailURL == "" {
		return nil, models.ErrInvalidArgument
	}
	if !in.Visibility.Valid() {
		return nil, models.ErrInvalidArgument
	}

	if err := s.gate.Allow(ctx, guard.MutationPolicy(), guard.Actor{Key: requester.String()}); err != nil {
		return nil, err
	}

	if err := s.store.SetVideoMeta(ctx, in.ExternalVideoID, in.Title, in.Description); err != nil {
		return nil, fmt.Errorf("push video metadata: %w", err)
	}

	now := s.clock()
	v := &models.Video{
		ID:           s.idGen(),
		ExternalID:   in.ExternalVideoID,
		OwnerID:      requester,
		Title:        in.Title,
		Description:  in.Description,
		VideoURL:     s.store.PlaybackURL(in.ExternalVideoID),
		ThumbnailURL: in.ThumbnailURL,
		Duration:     normalizeDuration(in.Duration),
		Visibility:   in.Visibility,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.record(ctx, models.NewVideoCreated(v.ID, v.OwnerID, v.ExternalID, now))
	s.logger.Info().
		Str("video_id", v.ID.String()).
		Str("external_id", v.ExternalID).
		Str("owner_id", v.OwnerID.String()).
		Msg("video finalized")

	return v, nil
}

// GetVideo resolves a video joined with its owner projection. Private videos
// resolve NotFound for anyone but their owner.
func (s *Service) GetVideo(ctx context.Context, requester, id uuid.UUID) (*models.VideoWithOwner, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(v.Visibility, v.OwnerID, requester) {
		return nil, models.ErrNotFound
	}
	return v, nil
}

type Pagination struct {
	CurrentPage int
	PageSize    int
	TotalPages  int
	TotalVideos int64
}

type VideoPage struct {
	Videos     []models.VideoWithOwner
	Pagination Pagination
}

// ListVideos serves the unscoped gallery: public videos only, for every
// requester. Pages are 1-based; page < 1 is treated as 1.
func (s *Service) ListVideos(ctx context.Context, query string, sortKey domain.SortKey, page, pageSize int) (*VideoPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	q := repository.ListQuery{
		PublicOnly: true,
		Title:      strings.TrimSpace(query),
		Sort:       sortKey,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	}
	videos, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &VideoPage{
		Videos: videos,
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalPages:  int((total + int64(pageSize) - 1) / int64(pageSize)),
			TotalVideos: total,
		},
	}, nil
}

type OwnerVideos struct {
	Owner  models.Owner
	Videos []models.VideoWithOwner
}

// ListByOwner serves a profile view. Owners see all their videos; everyone
// else, including anonymous requesters, sees only the public ones.
func (s *Service) ListByOwner(ctx context.Context, requester, ownerID uuid.UUID, query string, sortKey domain.SortKey) (*OwnerVideos, error) {
	if ownerID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}

	owner, err := s.repo.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	q := repository.ListQuery{
		OwnerID:    ownerID,
		PublicOnly: requester != ownerID,
		Title:      strings.TrimSpace(query),
		Sort:       sortKey,
	}
	videos, _, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &OwnerVideos{Owner: *owner, Videos: videos}, nil
}

// SetVisibility toggles a video between public and private. Owner only;
// concurrent toggles by the same owner resolve last-write-wins at the
// storage layer.
func (s *Service) SetVisibility(ctx context.Context, requester, id uuid.UUID, visibility models.Visibility) (models.Visibility, error) {
	if requester == uuid.Nil {
		return "", models.ErrUnauthenticated
	}
	if !visibility.Valid() {
		return "", models.ErrInvalidArgument
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !domain.IsOwner(v.OwnerID, requester) {
		return "", models.ErrUnauthorized
	}

	now := s.clock()
	stored, err := s.repo.UpdateVisibility(ctx, id, visibility, now)
	if err != nil {
		return "", err
	}
	if v.Visibility != stored {
		s.record(ctx, models.NewVideoVisibilityChanged(id, v.Visibility, stored, now))
	}
	return stored, nil
}

// Delete removes a video. The remote binary asset is deleted strictly before
// the metadata row: a crash in between leaves a recoverable orphaned asset,
// never a dangling row pointing at nothing.
func (s *Service) Delete(ctx context.Context, requester, id uuid.UUID) error {
	if requester == uuid.Nil {
		return models.ErrUnauthenticated
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.IsOwner(v.OwnerID, requester) {
		return models.ErrUnauthorized
	}

	// A missing remote asset means it is already gone (a retry after a crash
	// between the two deletes, or a janitor sweep); the row must still be
	// removable or it dangles forever.
	if err := s.store.DeleteVideo(ctx, v.ExternalID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("delete remote asset: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, models.NewVideoDeleted(id, v.OwnerID, v.ExternalID, s.clock()))
	s.logger.Info().Str("video_id", id.String()).Msg("video deleted")
	return nil
}

// RecordView adds exactly one view and returns the new count. The 3-second
// dwell debounce is a client obligation; this layer trusts the caller and
// accepts at-least-once counting.
func (s *Service) RecordView(ctx context.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, models.ErrInvalidArgument
	}
	return s.repo.IncrementViews(ctx, id)
}

func (s *Service) record(ctx context.Context, e models.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("event_type", e.EventType()).Msg("record event failed")
	}
}

func normalizeDuration(d float64) int {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0
	}
	return int(math.Round(d))
}
