// Package ipapi locates callers by their public IP address using the
// ip-api.com JSON endpoint.
package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/geo"
	"github.com/geosmoke/geosmoke/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in the health registry.
	ProviderName = "ipapi"

	// DefaultBaseURL is the ip-api.com base URL.
	DefaultBaseURL = "http://ip-api.com"

	// DefaultCacheTTL is how long a lookup result is reused.
	DefaultCacheTTL = 10 * time.Minute

	statusSuccess = "success"
	fields        = "status,message,lat,lon"
)

// ClientConfig holds configuration for the ip-api client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to ip-api.com).
	BaseURL string

	// HTTPClient is the resilient client to use (optional).
	HTTPClient *resilience.Client

	// CacheTTL controls result caching per IP. Default: 10 minutes.
	CacheTTL time.Duration

	// Metrics records cache hits and misses (optional).
	Metrics *resilience.Metrics

	Logger zerolog.Logger
}

// Client is an IP geolocation provider.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	cache      *cache.Cache
	metrics    *resilience.Metrics
	logger     zerolog.Logger
}

// lookup is a cached answer. A nil point means the IP could not be located.
type lookup struct {
	point *geo.Point
}

type response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// NewClient creates a new ip-api client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache.New(ttl, 2*ttl),
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Locate returns the approximate position of req.ClientIP. Empty, private,
// loopback and unparseable addresses yield no position without a request.
func (c *Client) Locate(ctx context.Context, req geo.Request) (*geo.Point, error) {
	addr, ok := publicAddr(req.ClientIP)
	if !ok {
		return nil, nil
	}
	key := addr.String()

	if cached, found := c.cache.Get(key); found {
		c.metrics.RecordCacheHit(ctx, ProviderName)
		return copyPoint(cached.(lookup).point), nil
	}
	c.metrics.RecordCacheMiss(ctx, ProviderName)

	pt, err := c.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, lookup{point: pt}, cache.DefaultExpiration)
	return copyPoint(pt), nil
}

func (c *Client) fetch(ctx context.Context, ip string) (*geo.Point, error) {
	u := fmt.Sprintf("%s/json/%s?fields=%s", c.baseURL, url.PathEscape(ip), fields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if body.Status != statusSuccess {
		c.logger.Debug().
			Str("ip", ip).
			Str("message", body.Message).
			Msg("ip lookup returned no position")
		return nil, nil
	}

	pt := &geo.Point{Lat: body.Lat, Lon: body.Lon}
	if !pt.Valid() {
		return nil, nil
	}
	return pt, nil
}

// publicAddr parses ip and reports whether it is a routable public address.
func publicAddr(ip string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast() {
		return netip.Addr{}, false
	}
	return addr, true
}

func copyPoint(p *geo.Point) *geo.Point {
	if p == nil {
		return nil
	}
	cpy := *p
	return &cpy
}

// Ensure Client implements geo.Provider.
var _ geo.Provider = (*Client)(nil)
