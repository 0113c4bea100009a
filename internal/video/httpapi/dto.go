package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/DevSsChar/SnapCast/internal/video/models"
	"github.com/DevSsChar/SnapCast/internal/video/service"
	"github.com/DevSsChar/SnapCast/internal/video/stream"
)

type SignInRequest struct {
	Email string `json:"email"`
}

type SignInResponse struct {
	Success bool `json:"success"`
}

type VideoTargetResponse struct {
	VideoID   string `json:"video_id"`
	UploadURL string `json:"upload_url"`
	AccessKey string `json:"access_key"`
}

type ThumbnailTargetRequest struct {
	VideoID string `json:"video_id"`
}

type ThumbnailTargetResponse struct {
	UploadURL string `json:"upload_url"`
	CDNURL    string `json:"cdn_url"`
	AccessKey string `json:"access_key"`
}

type FinalizeRequest struct {
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Visibility   string  `json:"visibility"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"`
}

type FinalizeResponse struct {
	Success bool      `json:"success"`
	VideoID uuid.UUID `json:"video_id"`
}

type OwnerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
	Email string    `json:"email,omitempty"`
}

type VideoResponse struct {
	ID           uuid.UUID     `json:"id"`
	ExternalID   string        `json:"external_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	VideoURL     string        `json:"video_url"`
	ThumbnailURL string        `json:"thumbnail_url"`
	Duration     int           `json:"duration"`
	Views        int64         `json:"views"`
	Visibility   string        `json:"visibility"`
	Owner        OwnerResponse `json:"owner"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type PaginationResponse struct {
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	TotalVideos int64 `json:"total_videos"`
}

type VideoListResponse struct {
	Videos     []VideoResponse    `json:"videos"`
	Pagination PaginationResponse `json:"pagination"`
}

type OwnerVideosResponse struct {
	Owner  OwnerResponse   `json:"owner"`
	Videos []VideoResponse `json:"videos"`
	Count  int             `json:"count"`
}

type VisibilityRequest struct {
	Visibility string `json:"visibility"`
}

type VisibilityResponse struct {
	Success    bool   `json:"success"`
	Visibility string `json:"visibility"`
}

type ViewsResponse struct {
	Success bool  `json:"success"`
	Views   int64 `json:"views"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the uniform failure envelope: callers branch on Kind,
// never on the message text.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"error_kind"`
	Message string `json:"message"`
}

func toVideoResponse(v *models.VideoWithOwner, withEmail bool) VideoResponse {
	owner := OwnerResponse{ID: v.Owner.ID, Name: v.Owner.Name, Image: v.Owner.Image}
	if withEmail {
		owner.Email = v.Owner.Email
	}
	return VideoResponse{
		ID:           v.ID,
		ExternalID:   v.ExternalID,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		Views:        v.Views,
		Visibility:   string(v.Visibility),
		Owner:        owner,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func toVideoList(vs []models.VideoWithOwner) []VideoResponse {
	out := make([]VideoResponse, 0, len(vs))
	for i := range vs {
		out = append(out, toVideoResponse(&vs[i], false))
	}
	return out
}

func toVideoTargetResponse(t *stream.VideoTarget) VideoTargetResponse {
	return VideoTargetResponse{VideoID: t.VideoID, UploadURL: t.UploadURL, AccessKey: t.AccessKey}
}

func toThumbnailTargetResponse(t *stream.ThumbnailTarget) ThumbnailTargetResponse {
	return ThumbnailTargetResponse{UploadURL: t.UploadURL, CDNURL: t.CDNURL, AccessKey: t.AccessKey}
}

func toPaginationResponse(p service.Pagination) PaginationResponse {
	return PaginationResponse{
		CurrentPage: p.CurrentPage,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages,
		TotalVideos: p.TotalVideos,
	}
}
