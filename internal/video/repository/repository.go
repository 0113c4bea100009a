package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/DevSsChar/SnapCast/internal/video/domain"
	"github.com/DevSsChar/SnapCast/internal/video/models"
)

// ListQuery is the predicate builder input for listing videos. Predicates
// are conjunctive: the zero value of a field means the predicate is absent,
// not active-false.
type ListQuery struct {
	// OwnerID restricts to one owner; uuid.Nil means any owner.
	OwnerID uuid.UUID
	// PublicOnly adds the visibility = public predicate.
	PublicOnly bool
	// Title is a case-insensitive substring match; empty means no filter.
	Title string
	Sort  domain.SortKey
	// Offset/Limit page the result. Limit <= 0 returns everything.
	Offset int
	Limit  int
}

type VideoRepository interface {
	Create(ctx context.Context, v *models.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VideoWithOwner, error)
	// List returns the page and the total number of rows matching the
	// predicates regardless of paging.
	List(ctx context.Context, q ListQuery) ([]models.VideoWithOwner, int64, error)
	UpdateVisibility(ctx context.Context, id uuid.UUID, visibility models.Visibility, at time.Time) (models.Visibility, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementViews adds exactly 1 and returns the new count. At-least-once
	// across caller retries; no dedup here.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	// GetOwner reads the identity provider's user projection.
	GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error)
}
