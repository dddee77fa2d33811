package shopengine

import (
	"crypto/subtle"
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	user := c.FormValue("username")
	pass := c.FormValue("password")
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.Config.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1
	if userOK && passOK {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	products, err := a.Store.ListAllProducts()
	if err != nil {
		return err
	}
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(products, posts, msg, CsrfToken(c)))
}

// --- Product CRUD ---

func (a *App) handleAdminProductNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminProductForm(Product{Currency: a.Config.Currency, Published: true}, "", CsrfToken(c)))
}

func (a *App) handleAdminProduct(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	product, err := a.Store.GetProductAny(c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminProductForm(product, "", CsrfToken(c)))
}

// parseProductForm normalizes the submitted form into a Product. The second
// return value is a user-facing validation message; empty means valid. The
// partially-filled product is returned either way so the form can re-render
// with the entered values.
func (a *App) parseProductForm(c echo.Context) (Product, string) {
	p := Product{
		ID:          strings.TrimSpace(c.FormValue("id")),
		Title:       strings.TrimSpace(c.FormValue("title")),
		Slug:        strings.TrimSpace(c.FormValue("slug")),
		Description: c.FormValue("description"),
		Currency:    strings.TrimSpace(c.FormValue("currency")),
		Category:    strings.TrimSpace(c.FormValue("category")),
		Type:        strings.TrimSpace(c.FormValue("type")),
		Images:      SplitCSV(c.FormValue("images")),
		Ingredients: SplitCSV(c.FormValue("ingredients")),
		Needs:       SplitCSV(c.FormValue("needs")),
		Tags:        SplitCSV(c.FormValue("tags")),
		Published:   c.FormValue("published") != "",
	}
	if p.Currency == "" {
		p.Currency = a.Config.Currency
	}
	if len(p.Title) < 2 {
		return p, "Title must be at least 2 characters."
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	} else {
		p.Slug = Slugify(p.Slug)
	}
	if p.Slug == "" {
		return p, "Slug is required. Add a title or slug."
	}
	raw := strings.TrimSpace(c.FormValue("price_cents"))
	price, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || price < 0 {
		return p, "Price must be a non-negative integer in cents."
	}
	p.PriceCents = price
	return p, ""
}

func (a *App) handleAdminProductSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	product, errMsg := a.parseProductForm(c)
	if errMsg != "" {
		return Render(c, a.Views.AdminProductForm(product, errMsg, CsrfToken(c)))
	}
	if _, err := a.Store.SaveProduct(product); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return Render(c, a.Views.AdminProductForm(product, "Slug is already in use.", CsrfToken(c)))
		}
		return err
	}
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminProductDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteProduct(c.Param("id")); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}

// --- Post CRUD ---

func (a *App) handleAdminPostNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminPostForm(BlogPost{Published: true}, "", CsrfToken(c)))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminPostForm(post, "", CsrfToken(c)))
}

// parsePostForm mirrors parseProductForm for blog posts, including the
// optional SEO override fields.
func parsePostForm(c echo.Context) (BlogPost, string) {
	p := BlogPost{
		ID:              strings.TrimSpace(c.FormValue("id")),
		Title:           strings.TrimSpace(c.FormValue("title")),
		Slug:            strings.TrimSpace(c.FormValue("slug")),
		Excerpt:         strings.TrimSpace(c.FormValue("excerpt")),
		Content:         c.FormValue("content"),
		CoverImage:      strings.TrimSpace(c.FormValue("cover_image")),
		Tags:            SplitCSV(c.FormValue("tags")),
		Published:       c.FormValue("published") != "",
		MetaTitle:       strings.TrimSpace(c.FormValue("meta_title")),
		MetaDescription: strings.TrimSpace(c.FormValue("meta_description")),
		OGImage:         strings.TrimSpace(c.FormValue("og_image")),
		Canonical:       strings.TrimSpace(c.FormValue("canonical")),
	}
	if len(p.Title) < 2 {
		return p, "Title must be at least 2 characters."
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	} else {
		p.Slug = Slugify(p.Slug)
	}
	if p.Slug == "" {
		return p, "Slug is required. Add a title or slug."
	}
	if strings.TrimSpace(p.Content) == "" {
		return p, "Content is required."
	}
	if msg := validateImageRef(p.CoverImage); msg != "" {
		return p, msg
	}
	if msg := validateImageRef(p.OGImage); msg != "" {
		return p, msg
	}
	return p, ""
}

// validateImageRef accepts empty values, site-relative paths, and absolute
// http(s) URLs.
func validateImageRef(v string) string {
	if v == "" || strings.HasPrefix(v, "/") ||
		strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return ""
	}
	return "Image must be a full https:// URL or a path that starts with /."
}

func (a *App) handleAdminPostSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	post, errMsg := parsePostForm(c)
	if errMsg != "" {
		return Render(c, a.Views.AdminPostForm(post, errMsg, CsrfToken(c)))
	}
	if _, err := a.Store.SavePost(post); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return Render(c, a.Views.AdminPostForm(post, "Slug is already in use.", CsrfToken(c)))
		}
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminPostDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeletePost(c.Param("id")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}
