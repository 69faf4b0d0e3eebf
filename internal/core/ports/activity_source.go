package ports

import "github.com/flotacare/fleet-console/internal/core/domain"

// ActivitySource delivers user activity events to subscribers.
type ActivitySource interface {
	// Subscribe registers fn and returns the func that detaches it.
	Subscribe(fn func(domain.ActivityEvent)) (unsubscribe func())
}
