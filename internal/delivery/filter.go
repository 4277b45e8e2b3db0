package delivery

import (
	"github.com/jasim8799/api/internal/models"
)

// FilterLinks keeps the links whose provider is unknown or reported up in status.
// The result preserves input order and is never nil.
func FilterLinks(links []models.DeliveryLink, status map[ProviderID]bool, classify func(models.DeliveryLink) ProviderID) []models.DeliveryLink {
	kept := make([]models.DeliveryLink, 0, len(links))
	for _, link := range links {
		id := classify(link)
		if id == Unknown || status[id] {
			kept = append(kept, link)
		}
	}
	return kept
}
