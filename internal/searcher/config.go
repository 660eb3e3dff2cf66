package searcher

import "time"

// Default engine settings
const (
	DefaultLimit      = 10
	DefaultMaxResults = 100
	DefaultTimeout    = 5 * time.Second
	DefaultCacheTTL   = 1 * time.Hour
	DefaultCacheSize  = 1000
)

// Config holds immutable engine settings. A zero field falls back to its
// default when the Searcher is constructed.
type Config struct {
	MaxResults          int           // Upper bound for a query's limit
	Timeout             time.Duration // Bound on a single storage round trip
	CacheEnabled        bool
	CacheTTL            time.Duration
	CacheSize           int // LRU entry limit
	DefaultMinRelevance float64
	FieldBoosts         map[string]float64 // Per-field score multipliers
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		MaxResults:   DefaultMaxResults,
		Timeout:      DefaultTimeout,
		CacheEnabled: true,
		CacheTTL:     DefaultCacheTTL,
		CacheSize:    DefaultCacheSize,
		FieldBoosts:  defaultFieldBoosts(),
	}
}

// withDefaults fills zero fields with default values
func (c Config) withDefaults() Config {
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.FieldBoosts == nil {
		c.FieldBoosts = defaultFieldBoosts()
	}
	return c
}
