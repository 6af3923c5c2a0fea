package session

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/pkg/errors"
)

// ProfileAPI is the slice of the backend client the profile cache uses.
type ProfileAPI interface {
	Me(ctx context.Context) (*models.UserProfile, error)
}

// ProfileCache lazily fetches the current user's profile and keeps it
// until the session changes identity. The cached entry is tagged with the
// session epoch at fetch time, so a logout, login or invalidation drops
// it without any callback wiring, and an in-flight fetch that resolves
// after the session moved on is discarded rather than applied.
type ProfileCache struct {
	mu          sync.Mutex
	cached      *models.UserProfile
	cachedEpoch uint64

	session *Store
	api     ProfileAPI
	metrics *metrics.AppMetrics
}

func NewProfileCache(session *Store, api ProfileAPI, m *metrics.AppMetrics) *ProfileCache {
	return &ProfileCache{
		session: session,
		api:     api,
		metrics: m,
	}
}

// Get returns the current user's profile, fetching it on first use. A
// successful fetch confirms the session's validity; a 401/403 demotes it
// via the API client's unauthorized handler.
func (p *ProfileCache) Get(ctx context.Context) (*models.UserProfile, error) {
	if !p.session.IsAuthenticated() {
		return nil, errors.New(errors.CodeAuthRequired, "")
	}

	epoch := p.session.Epoch()

	p.mu.Lock()
	if p.cached != nil && p.cachedEpoch == epoch {
		profile := p.cached
		p.mu.Unlock()
		p.metrics.CacheHits.Add(ctx, 1, metric.WithAttributes(p.metrics.WithServiceName(nil)...))
		return profile, nil
	}
	p.mu.Unlock()

	p.metrics.CacheMisses.Add(ctx, 1, metric.WithAttributes(p.metrics.WithServiceName(nil)...))

	profile, err := p.api.Me(ctx)
	if err != nil {
		return nil, err
	}

	if p.session.Epoch() != epoch {
		// The session changed identity while the fetch was in flight;
		// this profile belongs to a session that no longer exists.
		return nil, errors.New(errors.CodeAuthRequired, "session changed during profile fetch")
	}

	p.session.MarkValid()

	p.mu.Lock()
	p.cached = profile
	p.cachedEpoch = epoch
	p.mu.Unlock()

	return profile, nil
}

// IsAdmin reports whether the current user has the administrative role.
func (p *ProfileCache) IsAdmin(ctx context.Context) (bool, error) {
	profile, err := p.Get(ctx)
	if err != nil {
		return false, err
	}
	return profile.IsAdmin, nil
}
