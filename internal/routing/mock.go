package routing

import (
	"context"
	"fmt"

	"fleetly/internal/geo"
)

// MockRoute is one canned from/to answer for the MockProvider.
type MockRoute struct {
	From, To string
	Geometry geo.RouteGeometry
}

// MockProvider serves canned routes keyed by address pair. Used in tests and
// local development without an upstream routing service.
type MockProvider struct {
	m map[string]geo.RouteGeometry
}

func NewMockProvider(routes []MockRoute) *MockProvider {
	m := make(map[string]geo.RouteGeometry, len(routes))
	for _, r := range routes {
		m[r.From+"|"+r.To] = r.Geometry
	}
	return &MockProvider{m: m}
}

func (p *MockProvider) Route(ctx context.Context, from, to string) (*geo.RouteGeometry, error) {
	g, ok := p.m[from+"|"+to]
	if !ok {
		return nil, fmt.Errorf("missing route %q -> %q", from, to)
	}
	out := g
	return &out, nil
}
