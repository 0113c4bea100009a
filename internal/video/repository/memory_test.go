package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevSsChar/SnapCast/internal/video/domain"
	"github.com/DevSsChar/SnapCast/internal/video/models"
)

func seedVideo(t *testing.T, r *MemoryRepository, owner uuid.UUID, title string, vis models.Visibility, views int64, created time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, r.Create(context.Background(), &models.Video{
		ID:          id,
		ExternalID:  id.String(),
		OwnerID:     owner,
		Title:       title,
		Description: "d",
		Views:       views,
		Visibility:  vis,
		CreatedAt:   created,
		UpdatedAt:   created,
	}))
	return id
}

func TestCreate_DuplicateID(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	v := &models.Video{ID: uuid.New(), OwnerID: uuid.New(), Title: "t", Visibility: models.Public}
	require.NoError(t, r.Create(ctx, v))
	require.ErrorIs(t, r.Create(ctx, v), models.ErrConflict)
}

func TestGetByID_GuestFallback(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	owner := uuid.New()
	id := seedVideo(t, r, owner, "clip", models.Public, 0, time.Now())

	// No user record: the join degrades instead of failing.
	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.GuestName, got.Owner.Name)
	assert.Equal(t, models.GuestAvatarURL, got.Owner.Image)

	r.PutUser(&models.Owner{ID: owner, Name: "Ann", Image: "img", Email: "ann@example.com"})
	got, err = r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Owner.Name)
}

func TestList_Predicates(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	alice := uuid.New()
	bob := uuid.New()
	now := time.Now()

	seedVideo(t, r, alice, "Morning Routine", models.Public, 3, now)
	seedVideo(t, r, alice, "Secret Diary", models.Private, 9, now.Add(time.Second))
	seedVideo(t, r, bob, "morning run", models.Public, 7, now.Add(2*time.Second))
	seedVideo(t, r, bob, "Cooking", models.Public, 1, now.Add(3*time.Second))

	cases := []struct {
		name      string
		query     ListQuery
		wantTotal int64
	}{
		{name: "no predicates", query: ListQuery{}, wantTotal: 4},
		{name: "public only", query: ListQuery{PublicOnly: true}, wantTotal: 3},
		{name: "owner", query: ListQuery{OwnerID: alice}, wantTotal: 2},
		{name: "owner public only", query: ListQuery{OwnerID: alice, PublicOnly: true}, wantTotal: 1},
		{name: "title substring is case-insensitive", query: ListQuery{Title: "MORNING"}, wantTotal: 2},
		{name: "title and owner", query: ListQuery{OwnerID: bob, Title: "morning"}, wantTotal: 1},
		{name: "no match", query: ListQuery{Title: "zzz"}, wantTotal: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, total, err := r.List(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, total)
			assert.Len(t, got, int(tc.wantTotal))
		})
	}
}

func TestList_SortKeys(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	owner := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedVideo(t, r, owner, "first", models.Public, 10, base)
	seedVideo(t, r, owner, "second", models.Public, 30, base.Add(time.Hour))
	seedVideo(t, r, owner, "third", models.Public, 20, base.Add(2*time.Hour))

	titles := func(vs []models.VideoWithOwner) []string {
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = v.Title
		}
		return out
	}

	cases := []struct {
		sort domain.SortKey
		want []string
	}{
		{sort: domain.SortNewest, want: []string{"third", "second", "first"}},
		{sort: domain.SortOldest, want: []string{"first", "second", "third"}},
		{sort: domain.SortMostViewed, want: []string{"second", "third", "first"}},
		{sort: domain.SortLeastViewed, want: []string{"first", "third", "second"}},
		// No comment counts in the schema: falls back to newest.
		{sort: domain.SortMostCommented, want: []string{"third", "second", "first"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.sort), func(t *testing.T) {
			got, _, err := r.List(ctx, ListQuery{Sort: tc.sort})
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(got))
		})
	}
}

func TestList_PaginationInvariant(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	owner := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	const totalMatching = 17
	for i := 0; i < totalMatching; i++ {
		seedVideo(t, r, owner, "clip", models.Public, int64(i), base.Add(time.Duration(i)*time.Minute))
	}

	for _, pageSize := range []int{1, 3, 8, 17, 20} {
		seen := 0
		page := 1
		lastLen := 0
		for {
			got, total, err := r.List(ctx, ListQuery{
				PublicOnly: true,
				Offset:     (page - 1) * pageSize,
				Limit:      pageSize,
			})
			require.NoError(t, err)
			require.Equal(t, int64(totalMatching), total)
			if len(got) == 0 {
				break
			}
			seen += len(got)
			lastLen = len(got)
			page++
		}
		// Sum of page lengths equals the matching total, and the last page
		// holds the remainder.
		assert.Equal(t, totalMatching, seen, "pageSize=%d", pageSize)
		wantLast := totalMatching % pageSize
		if wantLast == 0 {
			wantLast = pageSize
		}
		assert.Equal(t, wantLast, lastLen, "pageSize=%d", pageSize)
	}
}

func TestUpdateVisibility_And_Views(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	owner := uuid.New()
	id := seedVideo(t, r, owner, "clip", models.Public, 0, time.Now())

	at := time.Now().Add(time.Minute)
	stored, err := r.UpdateVisibility(ctx, id, models.Private, at)
	require.NoError(t, err)
	assert.Equal(t, models.Private, stored)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Private, got.Visibility)
	assert.Equal(t, at, got.UpdatedAt)

	// Each call adds exactly one.
	n, err := r.IncrementViews(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = r.IncrementViews(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = r.UpdateVisibility(ctx, uuid.New(), models.Public, at)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = r.IncrementViews(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	id := seedVideo(t, r, uuid.New(), "clip", models.Public, 0, time.Now())

	require.NoError(t, r.Delete(ctx, id))
	_, err := r.GetByID(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, id), models.ErrNotFound)
}
