package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.Health)

	mux.HandleFunc("/auth/sign-in", h.SignIn)

	mux.HandleFunc("/uploads/videos", h.RequestVideoTarget)
	mux.HandleFunc("/uploads/thumbnails", h.RequestThumbnailTarget)

	// POST /videos (finalize), GET /videos (gallery)
	mux.HandleFunc("/videos", h.Videos)
	// Trailing slash so the handler can TrimPrefix("/videos/") for id routes.
	mux.HandleFunc("/videos/", h.VideoByID)

	// GET /users/{id}/videos
	mux.HandleFunc("/users/", h.OwnerVideos)

	return mux
}
