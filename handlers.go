package shopengine

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	featured, err := FeaturedProducts(a.Store)
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(featured, posts, ReadCart(c).Count()))
}

func (a *App) handleProducts(c echo.Context) error {
	filter := ParseProductFilter(c)
	products, err := a.Store.ListProducts(filter)
	if err != nil {
		return err
	}
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	return Render(c, a.Views.ProductList(products, filter, categories, ReadCart(c).Count()))
}

func (a *App) handleProduct(c echo.Context) error {
	slug := c.Param("slug")
	product, err := a.Store.GetProductBySlug(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	related, err := a.Store.ListProducts(ProductFilter{Category: product.Category})
	if err != nil {
		return err
	}
	// Drop the product itself from its related list.
	kept := related[:0]
	for _, p := range related {
		if p.ID != product.ID {
			kept = append(kept, p)
		}
	}
	meta := ProductMeta(a.Config, product)
	return Render(c, a.Views.ProductDetail(product, meta, kept, ReadCart(c).Count(), CsrfToken(c)))
}

func (a *App) handleBlog(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.BlogIndex(posts, tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	recent, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	meta := PostMeta(a.Config, post)
	return Render(c, a.Views.BlogPost(post, meta, recent))
}

// --- Cart ---

func (a *App) handleCartPage(c echo.Context) error {
	cart := ReadCart(c)
	items, err := CartItems(cart, a.Store)
	if err != nil {
		return err
	}
	return Render(c, a.Views.CartPage(items, Subtotal(items), CsrfToken(c)))
}

func (a *App) handleCartAdd(c echo.Context) error {
	id := c.FormValue("id")
	if id == "" {
		return c.Redirect(http.StatusSeeOther, "/cart/")
	}
	qty, err := strconv.Atoi(c.FormValue("qty"))
	if err != nil {
		qty = 1
	}
	cart := ReadCart(c)
	cart.Add(id, qty)
	a.writeCart(c, cart)
	if target := refererPath(c.Request()); target != "" {
		return c.Redirect(http.StatusSeeOther, target)
	}
	return c.Redirect(http.StatusSeeOther, "/cart/")
}

// refererPath returns the same-origin path of the Referer header, or ""
// when the header is absent, malformed, or points at another origin. The
// header is client-supplied, so it is never echoed back as a full URL.
func refererPath(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	if u.Host != "" && u.Host != r.Host {
		return ""
	}
	return u.RequestURI()
}

func (a *App) handleCartRemove(c echo.Context) error {
	cart := ReadCart(c)
	cart.Remove(c.FormValue("id"))
	a.writeCart(c, cart)
	return c.Redirect(http.StatusSeeOther, "/cart/")
}

func (a *App) handleCartClear(c echo.Context) error {
	a.writeCart(c, Cart{})
	return c.Redirect(http.StatusSeeOther, "/cart/")
}

// --- Instant search ---

type searchItem struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	PriceCents int64    `json:"priceCents"`
	Images     []string `json:"images"`
}

func (a *App) handleSearch(c echo.Context) error {
	q := c.QueryParam("q")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	products, err := a.Store.SearchProducts(q, limit)
	if err != nil {
		return err
	}
	items := make([]searchItem, 0, len(products))
	for _, p := range products {
		images := p.Images
		if images == nil {
			images = []string{}
		}
		items = append(items, searchItem{
			ID:         p.ID,
			Slug:       p.Slug,
			Title:      p.Title,
			PriceCents: p.PriceCents,
			Images:     images,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// --- Misc ---

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
