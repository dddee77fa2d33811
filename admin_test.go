package shopengine

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browse performs a request through the full middleware chain, carrying any
// cookies collected so far, and folds newly set cookies into the jar.
func browse(t *testing.T, app *App, method, target string, form url.Values, jar *[]*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, cookie := range *jar {
		req.AddCookie(cookie)
		if cookie.Name == "_csrf" && method != http.MethodGet {
			req.Header.Set("X-CSRF-Token", cookie.Value)
		}
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		kept := (*jar)[:0]
		for _, existing := range *jar {
			if existing.Name != cookie.Name {
				kept = append(kept, existing)
			}
		}
		*jar = append(kept, cookie)
	}
	return rec
}

// login authenticates against the app and returns the resulting cookie jar.
func login(t *testing.T, app *App) []*http.Cookie {
	t.Helper()
	var jar []*http.Cookie

	rec := browse(t, app, http.MethodGet, "/admin/", nil, &jar)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "[login]")

	rec = browse(t, app, http.MethodPost, "/admin/login/", url.Values{
		"username": {"admin"},
		"password": {"secret"},
	}, &jar)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin/", rec.Header().Get("Location"))
	return jar
}

func TestAdminLoginFlow(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)

	rec := browse(t, app, http.MethodGet, "/admin/", nil, &jar)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[dashboard:")
}

func TestAdminLoginWrongPassword(t *testing.T) {
	app := setupTestApp(t, nil)
	var jar []*http.Cookie
	browse(t, app, http.MethodGet, "/admin/", nil, &jar)

	rec := browse(t, app, http.MethodPost, "/admin/login/", url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	}, &jar)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[login-error]")

	// No session was granted.
	rec = browse(t, app, http.MethodGet, "/admin/", nil, &jar)
	assert.Contains(t, rec.Body.String(), "[login]")
}

func TestAdminLoginRateLimited(t *testing.T) {
	app := setupTestApp(t, nil)
	var jar []*http.Cookie
	browse(t, app, http.MethodGet, "/admin/", nil, &jar)

	creds := url.Values{"username": {"admin"}, "password": {"wrong"}}
	for i := 0; i < 5; i++ {
		rec := browse(t, app, http.MethodPost, "/admin/login/", creds, &jar)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := browse(t, app, http.MethodPost, "/admin/login/", creds, &jar)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Correct credentials are also refused while the window lasts.
	rec = browse(t, app, http.MethodPost, "/admin/login/", url.Values{
		"username": {"admin"}, "password": {"secret"},
	}, &jar)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdminLogout(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)

	rec := browse(t, app, http.MethodPost, "/admin/logout/", nil, &jar)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = browse(t, app, http.MethodGet, "/admin/", nil, &jar)
	assert.Contains(t, rec.Body.String(), "[login]")
}

func TestAdminCSRFRequired(t *testing.T) {
	app := setupTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader("username=admin&password=secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutesRedirectWhenAnonymous(t *testing.T) {
	app := setupTestApp(t, nil)
	var jar []*http.Cookie
	browse(t, app, http.MethodGet, "/admin/", nil, &jar)

	for _, target := range []string{"/admin/product/new/", "/admin/post/new/", "/admin/images/"} {
		rec := browse(t, app, http.MethodGet, target, nil, &jar)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/admin/", rec.Header().Get("Location"), target)
	}

	rec := browse(t, app, http.MethodPost, "/admin/product/save/", url.Values{"title": {"X"}}, &jar)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestAdminProductSave(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)

	rec := browse(t, app, http.MethodPost, "/admin/product/save/", url.Values{
		"title":       {"Green Tea"},
		"description": {"Loose leaf."},
		"price_cents": {"599"},
		"category":    {"tea"},
		"type":        {"beverage"},
		"needs":       {"immunity, detox"},
		"published":   {"on"},
	}, &jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[dashboard:saved]")

	got, err := app.Store.GetProductBySlug("green-tea")
	require.NoError(t, err)
	assert.Equal(t, int64(599), got.PriceCents)
	assert.Equal(t, []string{"immunity", "detox"}, got.Needs)
	assert.Equal(t, "USD", got.Currency, "currency falls back to the site default")
}

func TestAdminProductSaveValidation(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)

	rec := browse(t, app, http.MethodPost, "/admin/product/save/", url.Values{
		"title":       {"X"},
		"price_cents": {"100"},
	}, &jar)
	assert.Contains(t, rec.Body.String(), "[product-form:Title must be at least 2 characters.]")

	rec = browse(t, app, http.MethodPost, "/admin/product/save/", url.Values{
		"title":       {"Fine Title"},
		"price_cents": {"-5"},
	}, &jar)
	assert.Contains(t, rec.Body.String(), "[product-form:Price must be a non-negative integer in cents.]")

	products, err := app.Store.ListAllProducts()
	require.NoError(t, err)
	assert.Empty(t, products, "nothing was stored")
}

func TestAdminProductSaveDuplicateSlug(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)
	mustSaveProduct(t, app.Store, Product{Slug: "green-tea", Title: "Green Tea", Published: true})

	rec := browse(t, app, http.MethodPost, "/admin/product/save/", url.Values{
		"title":       {"Green Tea"},
		"price_cents": {"599"},
	}, &jar)
	assert.Contains(t, rec.Body.String(), "[product-form:Slug is already in use.]")
}

func TestAdminProductDelete(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)
	p := mustSaveProduct(t, app.Store, Product{Slug: "gone", Title: "Gone", Published: true})

	rec := browse(t, app, http.MethodDelete, "/admin/product/"+p.ID+"/", nil, &jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[dashboard:deleted]")

	products, err := app.Store.ListAllProducts()
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestAdminPostSaveInvalidatesCache(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)

	if _, err := app.Store.SavePost(BlogPost{Slug: "first", Title: "First", Content: "x", Published: true}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	posts, err := app.Cache.ListPosts("")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	rec := browse(t, app, http.MethodPost, "/admin/post/save/", url.Values{
		"title":     {"Second Post"},
		"content":   {"Body text."},
		"published": {"on"},
	}, &jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[dashboard:saved]")

	posts, err = app.Cache.ListPosts("")
	require.NoError(t, err)
	assert.Len(t, posts, 2, "cache reloads after an admin save")
}

func TestParsePostFormValidation(t *testing.T) {
	app := setupTestApp(t, nil)
	jar := login(t, app)

	rec := browse(t, app, http.MethodPost, "/admin/post/save/", url.Values{
		"title": {"No Content"},
	}, &jar)
	assert.Contains(t, rec.Body.String(), "[post-form:Content is required.]")

	rec = browse(t, app, http.MethodPost, "/admin/post/save/", url.Values{
		"title":       {"Bad Image"},
		"content":     {"Body."},
		"cover_image": {"ftp://nope"},
	}, &jar)
	assert.Contains(t, rec.Body.String(), "[post-form:Image must be")
}

func TestValidateImageRef(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"", true},
		{"/uploads/tea.jpg", true},
		{"https://cdn.example.net/tea.jpg", true},
		{"http://cdn.example.net/tea.jpg", true},
		{"uploads/tea.jpg", false},
		{"javascript:alert(1)", false},
	}

	for _, tt := range tests {
		got := validateImageRef(tt.in)
		if tt.ok && got != "" {
			t.Errorf("validateImageRef(%q) = %q, want accepted", tt.in, got)
		}
		if !tt.ok && got == "" {
			t.Errorf("validateImageRef(%q) accepted, want rejected", tt.in)
		}
	}
}
