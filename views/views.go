// Package views provides a plain HTML default implementation of
// shopengine.ViewFuncs. Sites that want their own look supply their own
// templ components instead; these exist so cmd/shopengine runs out of the box.
package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/shopengine"
)

// Funcs returns the default view functions for the given site config.
func Funcs(cfg shopengine.SiteConfig) shopengine.ViewFuncs {
	v := renderer{cfg: cfg}
	return shopengine.ViewFuncs{
		Home:             v.home,
		ProductList:      v.productList,
		ProductDetail:    v.productDetail,
		BlogIndex:        v.blogIndex,
		BlogPost:         v.blogPost,
		CartPage:         v.cartPage,
		AdminLogin:       v.adminLogin,
		AdminDashboard:   v.adminDashboard,
		AdminProductForm: v.adminProductForm,
		AdminPostForm:    v.adminPostForm,
		AdminImages:      v.adminImages,
		NotFound:         v.notFound,
		ServerError:      v.serverError,
	}
}

type renderer struct {
	cfg shopengine.SiteConfig
}

// component wraps an HTML-writing func as a templ.Component.
func component(fn func(w io.Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fn(w)
		return nil
	})
}

func esc(s string) string {
	return html.EscapeString(s)
}

// Money formats minor currency units for display, e.g. 599 -> "5.99".
func Money(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func (v renderer) page(w io.Writer, title, body string) {
	fmt.Fprintf(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/><title>%s</title></head><body><header><a href="/">%s</a> · <a href="/products/">Products</a> · <a href="/blog/">Blog</a> · <a href="/cart/">Cart</a></header><main>%s</main></body></html>`,
		esc(title), esc(v.cfg.Name), body)
}

func productCard(p shopengine.Product) string {
	return fmt.Sprintf(`<article><a href="%s"><h3>%s</h3></a><p>%s %s</p></article>`,
		p.Link(), esc(p.Title), Money(p.PriceCents), esc(p.Currency))
}

func (v renderer) home(featured []shopengine.Product, posts []shopengine.BlogPost, cartCount int) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>" + esc(v.cfg.Name) + "</h1>")
		if cartCount > 0 {
			fmt.Fprintf(&b, `<p><a href="/cart/">Cart (%d)</a></p>`, cartCount)
		}
		b.WriteString("<section><h2>Featured</h2>")
		for _, p := range featured {
			b.WriteString(productCard(p))
		}
		b.WriteString("</section><section><h2>From the blog</h2><ul>")
		for _, p := range posts {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, p.Link(), esc(p.Title))
		}
		b.WriteString("</ul></section>")
		v.page(w, v.cfg.Name, b.String())
	})
}

func (v renderer) productList(products []shopengine.Product, filter shopengine.ProductFilter, categories []string, cartCount int) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		title := "Products"
		if filter.Query != "" {
			title = fmt.Sprintf("Results for %q", filter.Query)
		}
		fmt.Fprintf(&b, `<h1>%s</h1><form action="/products/" method="get"><input type="search" name="q" value="%s"/><button>Search</button></form>`,
			esc(title), esc(filter.Query))
		b.WriteString("<nav>")
		for _, cat := range categories {
			fmt.Fprintf(&b, `<a href="/products/?cat=%s">%s</a> `, esc(cat), esc(cat))
		}
		b.WriteString("</nav>")
		if len(products) == 0 {
			b.WriteString("<p>No products found.</p>")
		}
		for _, p := range products {
			b.WriteString(productCard(p))
		}
		v.page(w, title+" — "+v.cfg.Name, b.String())
	})
}

func (v renderer) productDetail(p shopengine.Product, meta shopengine.PageMeta, related []shopengine.Product, cartCount int, csrfToken string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		fmt.Fprintf(&b, `<script type="application/ld+json">%s</script>`, shopengine.ProductJsonLD(v.cfg, p))
		fmt.Fprintf(&b, "<h1>%s</h1><p>%s</p><p>%s %s</p>", esc(p.Title), esc(p.Description), Money(p.PriceCents), esc(p.Currency))
		fmt.Fprintf(&b, `<form action="/cart/add/" method="post"><input type="hidden" name="_csrf" value="%s"/><input type="hidden" name="id" value="%s"/><input type="number" name="qty" value="1" min="1"/><button>Add to cart</button></form>`,
			esc(csrfToken), esc(p.ID))
		if len(related) > 0 {
			b.WriteString("<section><h2>Related</h2>")
			for _, r := range related {
				b.WriteString(productCard(r))
			}
			b.WriteString("</section>")
		}
		v.page(w, meta.Title, b.String())
	})
}

func (v renderer) blogIndex(posts []shopengine.BlogPost, activeTag string, tags []string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>Blog</h1><nav>")
		for _, t := range tags {
			fmt.Fprintf(&b, `<a href="/blog/?tag=%s">%s</a> `, esc(t), esc(t))
		}
		b.WriteString("</nav><ul>")
		for _, p := range posts {
			fmt.Fprintf(&b, `<li><a href="%s">%s</a> — %s</li>`, p.Link(), esc(p.Title), esc(p.Excerpt))
		}
		b.WriteString("</ul>")
		v.page(w, "Blog — "+v.cfg.Name, b.String())
	})
}

func (v renderer) blogPost(post shopengine.BlogPost, meta shopengine.PageMeta, recent []shopengine.BlogPost) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		fmt.Fprintf(&b, `<script type="application/ld+json">%s</script>`, shopengine.BlogPostingJsonLD(v.cfg, post))
		fmt.Fprintf(&b, "<article><h1>%s</h1>", esc(post.Title))
		for _, para := range strings.Split(post.Content, "\n\n") {
			fmt.Fprintf(&b, "<p>%s</p>", esc(para))
		}
		b.WriteString("</article>")
		v.page(w, meta.Title, b.String())
	})
}

func (v renderer) cartPage(items []shopengine.CartItem, subtotal int64, csrfToken string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>Cart</h1>")
		if len(items) == 0 {
			b.WriteString("<p>Your cart is empty.</p>")
		} else {
			b.WriteString("<ul>")
			for _, i := range items {
				fmt.Fprintf(&b, `<li>%s — %s × %d<form action="/cart/remove/" method="post"><input type="hidden" name="_csrf" value="%s"/><input type="hidden" name="id" value="%s"/><button>Remove</button></form></li>`,
					esc(i.Product.Title), Money(i.Product.PriceCents), i.Quantity, esc(csrfToken), esc(i.Product.ID))
			}
			b.WriteString("</ul>")
			fmt.Fprintf(&b, "<p>Subtotal: %s</p>", Money(subtotal))
			fmt.Fprintf(&b, `<form action="/cart/clear/" method="post"><input type="hidden" name="_csrf" value="%s"/><button>Clear cart</button></form>`, esc(csrfToken))
			b.WriteString(`<button onclick="fetch('/api/checkout',{method:'POST'}).then(r=>r.json()).then(d=>{if(d.url)location.href=d.url;else alert(d.error)})">Checkout</button>`)
		}
		v.page(w, "Cart — "+v.cfg.Name, b.String())
	})
}

func (v renderer) adminLogin(showError bool, csrfToken string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>Admin</h1>")
		if showError {
			b.WriteString("<p>Invalid credentials.</p>")
		}
		fmt.Fprintf(&b, `<form action="/admin/login/" method="post"><input type="hidden" name="_csrf" value="%s"/><input name="username" placeholder="Username"/><input type="password" name="password" placeholder="Password"/><button>Sign in</button></form>`, esc(csrfToken))
		v.page(w, "Admin — "+v.cfg.Name, b.String())
	})
}

func (v renderer) adminDashboard(products []shopengine.Product, posts []shopengine.BlogPost, message, csrfToken string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>Dashboard</h1>")
		if message != "" {
			fmt.Fprintf(&b, "<p>%s</p>", esc(message))
		}
		b.WriteString(`<h2>Products</h2><p><a href="/admin/product/new/">New product</a></p><ul>`)
		for _, p := range products {
			fmt.Fprintf(&b, `<li><a href="/admin/product/%s/">%s</a></li>`, esc(p.ID), esc(p.Title))
		}
		b.WriteString(`</ul><h2>Posts</h2><p><a href="/admin/post/new/">New post</a></p><ul>`)
		for _, p := range posts {
			fmt.Fprintf(&b, `<li><a href="/admin/post/%s/">%s</a></li>`, esc(p.ID), esc(p.Title))
		}
		b.WriteString("</ul>")
		v.page(w, "Dashboard — "+v.cfg.Name, b.String())
	})
}

func field(name, label, value string) string {
	return fmt.Sprintf(`<label>%s <input name="%s" value="%s"/></label>`, esc(label), name, esc(value))
}

func (v renderer) adminProductForm(p shopengine.Product, errMsg, csrfToken string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>Product</h1>")
		if errMsg != "" {
			fmt.Fprintf(&b, "<p>%s</p>", esc(errMsg))
		}
		fmt.Fprintf(&b, `<form action="/admin/product/save/" method="post"><input type="hidden" name="_csrf" value="%s"/><input type="hidden" name="id" value="%s"/>`, esc(csrfToken), esc(p.ID))
		b.WriteString(field("title", "Title", p.Title))
		b.WriteString(field("slug", "Slug", p.Slug))
		b.WriteString(field("description", "Description", p.Description))
		b.WriteString(field("price_cents", "Price (cents)", fmt.Sprintf("%d", p.PriceCents)))
		b.WriteString(field("currency", "Currency", p.Currency))
		b.WriteString(field("category", "Category", p.Category))
		b.WriteString(field("type", "Type", p.Type))
		b.WriteString(field("images", "Images", shopengine.JoinTags(p.Images)))
		b.WriteString(field("ingredients", "Ingredients", shopengine.JoinTags(p.Ingredients)))
		b.WriteString(field("needs", "Needs", shopengine.JoinTags(p.Needs)))
		b.WriteString(field("tags", "Tags", shopengine.JoinTags(p.Tags)))
		checked := ""
		if p.Published {
			checked = " checked"
		}
		fmt.Fprintf(&b, `<label>Published <input type="checkbox" name="published"%s/></label><button>Save</button></form>`, checked)
		v.page(w, "Product — "+v.cfg.Name, b.String())
	})
}

func (v renderer) adminPostForm(p shopengine.BlogPost, errMsg, csrfToken string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>Post</h1>")
		if errMsg != "" {
			fmt.Fprintf(&b, "<p>%s</p>", esc(errMsg))
		}
		fmt.Fprintf(&b, `<form action="/admin/post/save/" method="post"><input type="hidden" name="_csrf" value="%s"/><input type="hidden" name="id" value="%s"/>`, esc(csrfToken), esc(p.ID))
		b.WriteString(field("title", "Title", p.Title))
		b.WriteString(field("slug", "Slug", p.Slug))
		b.WriteString(field("excerpt", "Excerpt", p.Excerpt))
		fmt.Fprintf(&b, `<label>Content <textarea name="content">%s</textarea></label>`, esc(p.Content))
		b.WriteString(field("cover_image", "Cover image", p.CoverImage))
		b.WriteString(field("tags", "Tags", shopengine.JoinTags(p.Tags)))
		b.WriteString(field("meta_title", "Meta title", p.MetaTitle))
		b.WriteString(field("meta_description", "Meta description", p.MetaDescription))
		b.WriteString(field("og_image", "OG image", p.OGImage))
		b.WriteString(field("canonical", "Canonical", p.Canonical))
		checked := ""
		if p.Published {
			checked = " checked"
		}
		fmt.Fprintf(&b, `<label>Published <input type="checkbox" name="published"%s/></label><button>Save</button></form>`, checked)
		v.page(w, "Post — "+v.cfg.Name, b.String())
	})
}

func (v renderer) adminImages(images []shopengine.Image, csrfToken string) templ.Component {
	return component(func(w io.Writer) {
		var b strings.Builder
		b.WriteString("<h1>Images</h1>")
		fmt.Fprintf(&b, `<form action="/admin/images/upload/" method="post" enctype="multipart/form-data"><input type="hidden" name="_csrf" value="%s"/><input type="file" name="image"/><button>Upload</button></form><ul>`, esc(csrfToken))
		for _, img := range images {
			fmt.Fprintf(&b, `<li><a href="/public/uploads/%s">%s</a> (%dx%d)</li>`, esc(img.Filename), esc(img.Filename), img.Width, img.Height)
		}
		b.WriteString("</ul>")
		v.page(w, "Images — "+v.cfg.Name, b.String())
	})
}

func (v renderer) notFound() templ.Component {
	return component(func(w io.Writer) {
		v.page(w, "Not found — "+v.cfg.Name, "<h1>Page not found</h1><p><a href=\"/\">Back to the shop</a></p>")
	})
}

func (v renderer) serverError() templ.Component {
	return component(func(w io.Writer) {
		v.page(w, "Error — "+v.cfg.Name, "<h1>Something went wrong</h1><p>Try again in a moment.</p>")
	})
}
