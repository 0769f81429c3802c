package services

import (
	"fmt"

	"github.com/deploydeck/models"
)

// Authorize decides whether a principal may perform an action on a resource
// owned by ownerID. Admins may act on any resource; users only on their own.
// Evaluated strictly before any mutating orchestrator call.
func Authorize(principal models.Principal, ownerID string, action string) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.ID == ownerID {
		return nil
	}
	return models.NewForbidden(fmt.Sprintf("you are not authorized to %s this resource", action))
}
