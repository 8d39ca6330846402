package geo

import (
	"context"
	"time"
)

// Request carries what a provider may use to locate the caller.
type Request struct {
	// ClientIP is the caller's public address, if known.
	ClientIP string
}

// Provider resolves the caller's current position.
// A nil point with a nil error means the position is unknown.
type Provider interface {
	Locate(ctx context.Context, req Request) (*Point, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, req Request) (*Point, error)

// Locate calls f.
func (f ProviderFunc) Locate(ctx context.Context, req Request) (*Point, error) {
	return f(ctx, req)
}

// StaticProvider always returns the same position. A nil Point yields "unknown".
type StaticProvider struct {
	Point *Point
}

// Locate returns a copy of the configured point.
func (p StaticProvider) Locate(_ context.Context, _ Request) (*Point, error) {
	if p.Point == nil {
		return nil, nil
	}
	pt := *p.Point
	return &pt, nil
}

// LocateOnce performs a single bounded request against provider. It never
// retries. On error or timeout the point is nil and the error is returned for
// logging; callers treat both as "no coordinate".
func LocateOnce(ctx context.Context, provider Provider, req Request, timeout time.Duration) (*Point, error) {
	if provider == nil {
		return nil, nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pt, err := provider.Locate(ctx, req)
	if err != nil {
		return nil, err
	}
	if pt == nil || !pt.Valid() {
		return nil, nil
	}
	return pt, nil
}
