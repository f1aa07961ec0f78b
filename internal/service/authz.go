package service

import (
	"fmt"

	"potluck/internal/models"
)

// ensureOwner is the single ownership predicate for mutating posts and
// comments. It returns a Forbidden error unless actorID owns the resource.
func ensureOwner(ownerID, actorID uint, resource string) error {
	if actorID == 0 || ownerID != actorID {
		return models.NewForbiddenError(fmt.Sprintf("You can only modify your own %s", resource))
	}
	return nil
}
