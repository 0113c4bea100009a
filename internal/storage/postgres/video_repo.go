package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DevSsChar/SnapCast/internal/video/domain"
	"github.com/DevSsChar/SnapCast/internal/video/models"
	"github.com/DevSsChar/SnapCast/internal/video/repository"
)

type VideoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) *VideoRepo {
	return &VideoRepo{db: db}
}

const videoColumns = `
	v.id, v.external_id, v.owner_id, v.title, v.description,
	v.video_url, v.thumbnail_url, v.duration, v.views, v.visibility,
	v.created_at, v.updated_at,
	u.name AS owner_name, u.image AS owner_image, u.email AS owner_email
`

// videoRow carries the video joined with the nullable owner projection. The
// users table belongs to the identity provider; the join is read-only and a
// missing record degrades to the guest fallback.
type videoRow struct {
	models.Video
	OwnerName  sql.NullString `db:"owner_name"`
	OwnerImage sql.NullString `db:"owner_image"`
	OwnerEmail sql.NullString `db:"owner_email"`
}

func (r videoRow) joined() models.VideoWithOwner {
	owner := models.Owner{ID: r.OwnerID, Name: models.GuestName, Image: models.GuestAvatarURL}
	if r.OwnerName.Valid {
		owner.Name = r.OwnerName.String
		owner.Image = r.OwnerImage.String
		owner.Email = r.OwnerEmail.String
	}
	return models.VideoWithOwner{Video: r.Video, Owner: owner}
}

func (r *VideoRepo) Create(ctx context.Context, v *models.Video) error {
	const q = `
		INSERT INTO videos (id, external_id, owner_id, title, description,
			video_url, thumbnail_url, duration, views, visibility,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, q,
		v.ID, v.ExternalID, v.OwnerID, v.Title, v.Description,
		v.VideoURL, v.ThumbnailURL, v.Duration, v.Views, v.Visibility,
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("video create: %w", err)
	}
	return nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoWithOwner, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM videos v
		LEFT JOIN users u ON u.id = v.owner_id
		WHERE v.id = $1
	`, videoColumns)

	var row videoRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video get by id: %w", err)
	}

	joined := row.joined()
	return &joined, nil
}

// orderClause maps the closed sort enum to SQL. mostCommented falls back to
// newest while the schema carries no comment counts.
func orderClause(key domain.SortKey) string {
	switch key {
	case domain.SortOldest:
		return "v.created_at ASC"
	case domain.SortMostViewed:
		return "v.views DESC, v.created_at DESC"
	case domain.SortLeastViewed:
		return "v.views ASC, v.created_at DESC"
	default:
		return "v.created_at DESC"
	}
}

// buildPredicates turns a ListQuery into a conjunctive WHERE clause. Absent
// filters add no predicate at all, so zero values never act as active-false
// conditions.
func buildPredicates(q repository.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.OwnerID != uuid.Nil {
		args = append(args, q.OwnerID)
		conds = append(conds, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	if q.PublicOnly {
		args = append(args, models.Public)
		conds = append(conds, fmt.Sprintf("v.visibility = $%d", len(args)))
	}
	if q.Title != "" {
		args = append(args, "%"+q.Title+"%")
		conds = append(conds, fmt.Sprintf("v.title ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *VideoRepo) List(ctx context.Context, q repository.ListQuery) ([]models.VideoWithOwner, int64, error) {
	where, args := buildPredicates(q)

	var total int64
	countQuery := "SELECT COUNT(*) FROM videos v" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("video count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM videos v
		LEFT JOIN users u ON u.id = v.owner_id
		%s
		ORDER BY %s
	`, videoColumns, where, orderClause(q.Sort))
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset)
	}

	var rows []videoRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("video list: %w", err)
	}

	out := make([]models.VideoWithOwner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.joined())
	}
	return out, total, nil
}

func (r *VideoRepo) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility models.Visibility, at time.Time) (models.Visibility, error) {
	const q = `
		UPDATE videos
		SET visibility = $2, updated_at = $3
		WHERE id = $1
		RETURNING visibility
	`

	var stored models.Visibility
	if err := r.db.GetContext(ctx, &stored, q, id, visibility, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("video update visibility: %w", err)
	}
	return stored, nil
}

func (r *VideoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM videos WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("video delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *VideoRepo) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `
		UPDATE videos
		SET views = views + 1
		WHERE id = $1
		RETURNING views
	`

	var views int64
	if err := r.db.GetContext(ctx, &views, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("video increment views: %w", err)
	}
	return views, nil
}

func (r *VideoRepo) GetOwner(ctx context.Context, id uuid.UUID) (*models.Owner, error) {
	const q = `
		SELECT id, name, image, email
		FROM users
		WHERE id = $1
	`

	var owner models.Owner
	if err := r.db.GetContext(ctx, &owner, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("owner get by id: %w", err)
	}
	return &owner, nil
}
