// Package shopengine is a storefront engine built with Go, Echo, and templ.
// It provides a product catalog with search and filtering, a cookie-backed
// shopping cart, Stripe checkout handoff, a blog, and an admin dashboard for
// managing products and posts.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// shopengine handles the handler logic, middleware, and database operations.
package shopengine

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds user-provided templ components that the engine calls when
// rendering pages. This is the inversion-of-control mechanism that lets
// users own and customize all templates.
type ViewFuncs struct {
	Home          func(featured []Product, posts []BlogPost, cartCount int) templ.Component
	ProductList   func(products []Product, filter ProductFilter, categories []string, cartCount int) templ.Component
	ProductDetail func(p Product, meta PageMeta, related []Product, cartCount int, csrfToken string) templ.Component
	BlogIndex     func(posts []BlogPost, activeTag string, tags []string) templ.Component
	BlogPost      func(post BlogPost, meta PageMeta, recent []BlogPost) templ.Component
	CartPage      func(items []CartItem, subtotal int64, csrfToken string) templ.Component

	AdminLogin       func(showError bool, csrfToken string) templ.Component
	AdminDashboard   func(products []Product, posts []BlogPost, message string, csrfToken string) templ.Component
	AdminProductForm func(p Product, errMsg string, csrfToken string) templ.Component
	AdminPostForm    func(p BlogPost, errMsg string, csrfToken string) templ.Component
	AdminImages      func(images []Image, csrfToken string) templ.Component

	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central shopengine application. It wires together the store,
// cart, checkout, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs

	checkout     *Checkout
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new shopengine App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, cache, middleware, routes, and starts the server.
func (a *App) Start() error {
	if a.Store == nil {
		if err := a.Init(); err != nil {
			return err
		}
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Init prepares the App without starting the listener. Useful for tests and
// for callers that manage the server lifecycle themselves.
func (a *App) Init() error {
	if a.Config.AdminUser == "" || a.Config.AdminPassword == "" {
		return fmt.Errorf("shopengine: AdminUser and AdminPassword are required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("shopengine: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("shopengine: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.checkout = NewCheckout(a.Config, a.Store)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Storefront
	e.GET("/", a.handleHome)
	e.GET("/products/", a.handleProducts)
	e.GET("/products/:slug/", a.handleProduct)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)

	// Cart
	e.GET("/cart/", a.handleCartPage)
	e.POST("/cart/add/", a.handleCartAdd)
	e.POST("/cart/remove/", a.handleCartRemove)
	e.POST("/cart/clear/", a.handleCartClear)

	// JSON API
	e.GET("/api/search", a.handleSearch)
	e.POST("/api/checkout", a.handleCheckout)
	e.POST("/api/stripe-webhook", a.handleWebhook)

	// Admin
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/product/new/", a.handleAdminProductNew)
	e.GET("/admin/product/:id/", a.handleAdminProduct)
	e.POST("/admin/product/save/", a.handleAdminProductSave)
	e.DELETE("/admin/product/:id/", a.handleAdminProductDelete)
	e.GET("/admin/post/new/", a.handleAdminPostNew)
	e.GET("/admin/post/:id/", a.handleAdminPost)
	e.POST("/admin/post/save/", a.handleAdminPostSave)
	e.DELETE("/admin/post/:id/", a.handleAdminPostDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("shopengine: required environment variable %s is not set", key)
	}
	return v
}
