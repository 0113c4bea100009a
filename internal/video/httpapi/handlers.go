package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DevSsChar/SnapCast/internal/video/auth"
	"github.com/DevSsChar/SnapCast/internal/video/domain"
	"github.com/DevSsChar/SnapCast/internal/video/models"
	"github.com/DevSsChar/SnapCast/internal/video/service"
)

type Handler struct {
	svc      *service.Service
	sessions auth.SessionProvider
	logger   zerolog.Logger
}

func New(svc *service.Service, sessions auth.SessionProvider, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		logger:   logger.With().Str("component", "httpapi").Logger(),
	}
}

// requester resolves the acting identity. A missing or unreadable session is
// anonymous (uuid.Nil); operations that need authentication fail later with
// Unauthenticated.
func (h *Handler) requester(r *http.Request) uuid.UUID {
	s, err := h.sessions.GetSession(r.Context(), r.Header)
	if err != nil {
		h.logger.Debug().Err(err).Msg("session resolution failed, treating as anonymous")
		return uuid.Nil
	}
	if s == nil {
		return uuid.Nil
	}
	return s.UserID
}

func (h *Handler) fingerprint(r *http.Request) string {
	s, err := h.sessions.GetSession(r.Context(), r.Header)
	if err != nil {
		s = nil
	}
	return auth.Fingerprint(s, r.RemoteAddr)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SignIn gates a sign-in attempt with the authentication policy. The actual
// credential exchange happens at the identity provider.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	defer r.Body.Close()

	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	if err := h.svc.GuardSignIn(r.Context(), req.Email, h.fingerprint(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SignInResponse{Success: true})
}

func (h *Handler) RequestVideoTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	t, err := h.svc.RequestVideoTarget(r.Context(), h.requester(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVideoTargetResponse(t))
}

func (h *Handler) RequestThumbnailTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	defer r.Body.Close()

	var req ThumbnailTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	t, err := h.svc.RequestThumbnailTarget(r.Context(), h.requester(r), req.VideoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toThumbnailTargetResponse(t))
}

// Videos dispatches /videos: POST finalizes an upload, GET lists the public
// gallery.
func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.finalize(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeMethodNotAllowed(w)
	}
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	v, err := h.svc.Finalize(r.Context(), h.requester(r), service.FinalizeInput{
		ExternalVideoID: req.VideoID,
		Title:           req.Title,
		Description:     req.Description,
		Visibility:      models.Visibility(req.Visibility),
		ThumbnailURL:    req.ThumbnailURL,
		Duration:        req.Duration,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FinalizeResponse{Success: true, VideoID: v.ID})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortKey, ok := domain.ParseSortKey(q.Get("sort"))
	if !ok {
		writeError(w, models.ErrInvalidArgument)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	res, err := h.svc.ListVideos(r.Context(), q.Get("query"), sortKey, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VideoListResponse{
		Videos:     toVideoList(res.Videos),
		Pagination: toPaginationResponse(res.Pagination),
	})
}

// VideoByID dispatches /videos/{id} and its sub-resources:
//
//	GET    /videos/{id}
//	DELETE /videos/{id}
//	PATCH  /videos/{id}/visibility
//	POST   /videos/{id}/views
func (h *Handler) VideoByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/videos/")
	if rest == "" || rest == r.URL.Path {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	idStr, sub, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.getVideo(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.deleteVideo(w, r, id)
	case sub == "visibility" && r.Method == http.MethodPatch:
		h.setVisibility(w, r, id)
	case sub == "views" && r.Method == http.MethodPost:
		h.recordView(w, r, id)
	default:
		writeMethodNotAllowed(w)
	}
}

func (h *Handler) getVideo(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	v, err := h.svc.GetVideo(r.Context(), h.requester(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := toVideoResponse(v, false)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteVideo(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.svc.Delete(r.Context(), h.requester(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	defer r.Body.Close()

	var req VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	stored, err := h.svc.SetVisibility(r.Context(), h.requester(r), id, models.Visibility(req.Visibility))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VisibilityResponse{Success: true, Visibility: string(stored)})
}

func (h *Handler) recordView(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	views, err := h.svc.RecordView(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ViewsResponse{Success: true, Views: views})
}

// OwnerVideos handles GET /users/{id}/videos: the profile view.
func (h *Handler) OwnerVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/users/")
	idStr, sub, _ := strings.Cut(rest, "/")
	if sub != "videos" {
		writeError(w, models.ErrNotFound)
		return
	}
	ownerID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	q := r.URL.Query()
	sortKey, ok := domain.ParseSortKey(q.Get("sort"))
	if !ok {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	requester := h.requester(r)
	res, err := h.svc.ListByOwner(r.Context(), requester, ownerID, q.Get("query"), sortKey)
	if err != nil {
		writeError(w, err)
		return
	}

	owner := OwnerResponse{ID: res.Owner.ID, Name: res.Owner.Name, Image: res.Owner.Image}
	// The owner's email is part of the profile projection only for the owner
	// themselves.
	if requester == res.Owner.ID {
		owner.Email = res.Owner.Email
	}
	writeJSON(w, http.StatusOK, OwnerVideosResponse{
		Owner:  owner,
		Videos: toVideoList(res.Videos),
		Count:  len(res.Videos),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Kind:    "METHOD_NOT_ALLOWED",
		Message: "method not allowed",
	})
}

func writeBadJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Kind:    "VALIDATION_FAILURE",
		Message: "invalid json body",
	})
}

// writeError maps service failures to the uniform error envelope. Upstream
// failures stay generic so internal URLs and keys never leak.
func writeError(w http.ResponseWriter, err error) {
	var (
		status int
		kind   string
		msg    string
	)
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		status, kind, msg = http.StatusUnauthorized, "UNAUTHENTICATED", "sign in to continue"
	case errors.Is(err, models.ErrUnauthorized):
		status, kind, msg = http.StatusForbidden, "UNAUTHORIZED", "only the owner can do this"
	case errors.Is(err, models.ErrNotFound):
		status, kind, msg = http.StatusNotFound, "NOT_FOUND", "video or user not found"
	case errors.Is(err, models.ErrRateLimited):
		status, kind, msg = http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again in a minute"
	case errors.Is(err, models.ErrInvalidEmail):
		status, kind, msg = http.StatusUnprocessableEntity, "INVALID_EMAIL", "this email address cannot be used"
	case errors.Is(err, models.ErrBotDetected):
		status, kind, msg = http.StatusForbidden, "BOT_OR_SHIELD", "request blocked"
	case errors.Is(err, models.ErrUpstream):
		status, kind, msg = http.StatusBadGateway, "UPSTREAM_FAILURE", "storage is temporarily unavailable, please retry"
	case errors.Is(err, models.ErrConflict):
		status, kind, msg = http.StatusConflict, "CONFLICT", "conflict"
	case errors.Is(err, models.ErrInvalidArgument):
		status, kind, msg = http.StatusBadRequest, "VALIDATION_FAILURE", "missing or invalid field"
	default:
		status, kind, msg = http.StatusInternalServerError, "INTERNAL", "internal error"
	}
	writeJSON(w, status, ErrorResponse{Kind: kind, Message: msg})
}
