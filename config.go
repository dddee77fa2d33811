package shopengine

import "time"

// SiteConfig holds all configuration for a shopengine site.
type SiteConfig struct {
	Name        string // Site name (default "Shop")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/shop.db")

	AdminUser     string // Required: admin login username
	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	StripeSecretKey     string // Payment processor API key; empty disables checkout
	StripeWebhookSecret string // Webhook signing secret; empty skips verification
	Currency            string // Default currency code for new products (default "USD")

	CartMaxAge   time.Duration // Cart cookie lifetime (default 7 days)
	PostCacheTTL time.Duration // Post cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Shop"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/shop.db"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.CartMaxAge == 0 {
		c.CartMaxAge = 7 * 24 * time.Hour
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
