package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DevSsChar/SnapCast/internal/video/domain"
	"github.com/DevSsChar/SnapCast/internal/video/models"
)

// MemoryRepository keeps videos and the user projection in process. It backs
// tests and exercises exactly the same filter/sort/paging semantics as the
// Postgres repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	videos map[uuid.UUID]*models.Video
	users  map[uuid.UUID]*models.Owner
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		videos: make(map[uuid.UUID]*models.Video),
		users:  make(map[uuid.UUID]*models.Owner),
	}
}

// PutUser seeds the read-only user projection. The identity provider owns
// these records in production.
func (r *MemoryRepository) PutUser(u *models.Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *MemoryRepository) Create(ctx context.Context, v *models.Video) error {
	if v == nil || v.ID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[v.ID]; exists {
		return models.ErrConflict
	}

	// Defensive copy so the caller cannot mutate the stored row.
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoWithOwner, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	joined := r.join(v)
	return &joined, nil
}

func (r *MemoryRepository) List(ctx context.Context, q ListQuery) ([]models.VideoWithOwner, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Video, 0, len(r.videos))
	for _, v := range r.videos {
		if q.OwnerID != uuid.Nil && v.OwnerID != q.OwnerID {
			continue
		}
		if q.PublicOnly && v.Visibility != models.Public {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(q.Title)) {
			continue
		}
		matched = append(matched, v)
	}

	sortVideos(matched, q.Sort)
	total := int64(len(matched))

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]models.VideoWithOwner, 0, len(matched))
	for _, v := range matched {
		out = append(out, r.join(v))
	}
	return out, total, nil
}

func (r *MemoryRepository) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility models.Visibility, at time.Time) (models.Visibility, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return "", models.ErrNotFound
	}
	v.Visibility = visibility
	v.UpdatedAt = at
	return v.Visibility, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *MemoryRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	v.Views++
	return v.Views, nil
}

func (r *MemoryRepository) GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// join resolves the owner projection, degrading to the guest fallback when
// the identity record is gone.
func (r *MemoryRepository) join(v *models.Video) models.VideoWithOwner {
	owner := models.Owner{ID: v.OwnerID, Name: models.GuestName, Image: models.GuestAvatarURL}
	if u, ok := r.users[v.OwnerID]; ok {
		owner = *u
	}
	cp := *v
	return models.VideoWithOwner{Video: cp, Owner: owner}
}

func sortVideos(vs []*models.Video, key domain.SortKey) {
	less := func(a, b *models.Video) bool { return a.CreatedAt.After(b.CreatedAt) }

	switch key {
	case domain.SortOldest:
		less = func(a, b *models.Video) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case domain.SortMostViewed:
		less = func(a, b *models.Video) bool { return a.Views > b.Views }
	case domain.SortLeastViewed:
		less = func(a, b *models.Video) bool { return a.Views < b.Views }
	}
	// SortNewest and SortMostCommented (no comment counts in the schema)
	// both order by creation time descending.

	sort.SliceStable(vs, func(i, j int) bool {
		if less(vs[i], vs[j]) {
			return true
		}
		if less(vs[j], vs[i]) {
			return false
		}
		// Deterministic tie-break.
		return vs[i].ID.String() < vs[j].ID.String()
	})
}
