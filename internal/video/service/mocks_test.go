package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/DevSsChar/SnapCast/internal/video/models"
	"github.com/DevSsChar/SnapCast/internal/video/repository"
	"github.com/DevSsChar/SnapCast/internal/video/stream"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) Create(ctx context.Context, v *models.Video) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *RepoMock) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoWithOwner, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.VideoWithOwner), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) List(ctx context.Context, q repository.ListQuery) ([]models.VideoWithOwner, int64, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]models.VideoWithOwner), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *RepoMock) UpdateVisibility(ctx context.Context, id uuid.UUID, vis models.Visibility, at time.Time) (models.Visibility, error) {
	args := m.Called(ctx, id, vis, at)
	return args.Get(0).(models.Visibility), args.Error(1)
}

func (m *RepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RepoMock) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Owner), args.Error(1)
	}
	return nil, args.Error(1)
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) AllocateVideo(ctx context.Context) (*stream.VideoTarget, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*stream.VideoTarget), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) VideoExists(ctx context.Context, videoID string) (bool, error) {
	args := m.Called(ctx, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *StoreMock) AllocateThumbnail(ctx context.Context, videoID string) (*stream.ThumbnailTarget, error) {
	args := m.Called(ctx, videoID)
	if v := args.Get(0); v != nil {
		return v.(*stream.ThumbnailTarget), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) SetVideoMeta(ctx context.Context, videoID, title, description string) error {
	args := m.Called(ctx, videoID, title, description)
	return args.Error(0)
}

func (m *StoreMock) DeleteVideo(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

func (m *StoreMock) PlaybackURL(videoID string) string {
	args := m.Called(videoID)
	return args.String(0)
}
