package domain

import (
	"github.com/google/uuid"

	"github.com/DevSsChar/SnapCast/internal/video/models"
)

// CanView is the per-read access decision: public videos are visible to
// anyone, private videos only to their owner. An absent requester is
// uuid.Nil and never matches an owner.
func CanView(visibility models.Visibility, ownerID, requesterID uuid.UUID) bool {
	if visibility == models.Public {
		return true
	}
	return requesterID != uuid.Nil && requesterID == ownerID
}

// IsOwner guards mutations. Ownership requires an authenticated requester.
func IsOwner(ownerID, requesterID uuid.UUID) bool {
	return requesterID != uuid.Nil && requesterID == ownerID
}
