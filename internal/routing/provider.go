package routing

import (
	"context"

	"fleetly/internal/geo"
)

// Provider resolves two free-text addresses into a drivable route. The core
// treats it as an opaque upstream call, consumed once per trip to feed the
// corridor builder.
type Provider interface {
	Route(ctx context.Context, from, to string) (*geo.RouteGeometry, error)
}
