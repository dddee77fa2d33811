package shopengine

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"
)

// marker returns a component that renders a recognizable token, so handler
// tests can assert which view was chosen without a real template set.
func marker(name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "["+name+"]")
		return err
	})
}

func testViews() ViewFuncs {
	return ViewFuncs{
		Home: func([]Product, []BlogPost, int) templ.Component { return marker("home") },
		ProductList: func([]Product, ProductFilter, []string, int) templ.Component {
			return marker("product-list")
		},
		ProductDetail: func(Product, PageMeta, []Product, int, string) templ.Component {
			return marker("product-detail")
		},
		BlogIndex: func([]BlogPost, string, []string) templ.Component { return marker("blog-index") },
		BlogPost:  func(BlogPost, PageMeta, []BlogPost) templ.Component { return marker("blog-post") },
		CartPage:  func([]CartItem, int64, string) templ.Component { return marker("cart") },
		AdminLogin: func(showError bool, _ string) templ.Component {
			if showError {
				return marker("login-error")
			}
			return marker("login")
		},
		AdminDashboard: func(_ []Product, _ []BlogPost, msg, _ string) templ.Component {
			return marker("dashboard:" + msg)
		},
		AdminProductForm: func(_ Product, errMsg, _ string) templ.Component {
			return marker("product-form:" + errMsg)
		},
		AdminPostForm: func(_ BlogPost, errMsg, _ string) templ.Component {
			return marker("post-form:" + errMsg)
		},
		AdminImages: func([]Image, string) templ.Component { return marker("images") },
		NotFound:    func() templ.Component { return marker("not-found") },
		ServerError: func() templ.Component { return marker("server-error") },
	}
}

func setupTestApp(t *testing.T, mutate func(*SiteConfig)) *App {
	t.Helper()
	cfg := SiteConfig{
		Name:          "Test Shop",
		URL:           "https://example.com",
		DatabasePath:  filepath.Join(t.TempDir(), "test_app.db"),
		AdminUser:     "admin",
		AdminPassword: "secret",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		CookieSecure:  false,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	app := New(cfg, testViews())
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.Close() })
	return app
}
