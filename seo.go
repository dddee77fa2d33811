package shopengine

import (
	"encoding/json"
	"regexp"
	"strings"
)

const defaultMetaDescriptionLen = 155

var (
	reHTMLTag    = regexp.MustCompile(`<[^>]+>`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reAbsolute   = regexp.MustCompile(`(?i)^https?://`)
)

// MetaDescription builds a compact meta description from source, falling
// back to fallback when source is empty. HTML tags are stripped, whitespace
// collapsed, and the result truncated to max runes (155 when max <= 0) with
// a trailing ellipsis.
func MetaDescription(source, fallback string, max int) string {
	if max <= 0 {
		max = defaultMetaDescriptionLen
	}
	raw := source
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}
	raw = reHTMLTag.ReplaceAllString(raw, " ")
	raw = strings.TrimSpace(reWhitespace.ReplaceAllString(raw, " "))
	runes := []rune(raw)
	if len(runes) <= max {
		return raw
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}

// AbsoluteURL resolves a site-relative path against the configured site URL.
// Already-absolute URLs pass through unchanged.
func AbsoluteURL(siteURL, p string) string {
	if p == "" {
		return siteURL
	}
	if reAbsolute.MatchString(p) {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(siteURL, "/") + p
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// ProductJsonLD produces a Schema.org Product JSON-LD block with an Offer.
func ProductJsonLD(cfg SiteConfig, p Product) string {
	productURL := BuildURL(cfg.URL, "products", p.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        p.Title,
		"description": MetaDescription(p.Description, cfg.Description, 0),
		"url":         productURL,
		"offers": map[string]interface{}{
			"@type":         "Offer",
			"price":         float64(p.PriceCents) / 100,
			"priceCurrency": p.Currency,
			"url":           productURL,
			"availability":  "https://schema.org/InStock",
		},
	}
	if len(p.Images) > 0 {
		imgs := make([]string, len(p.Images))
		for i, img := range p.Images {
			imgs[i] = AbsoluteURL(cfg.URL, img)
		}
		data["image"] = imgs
	}
	if p.Category != "" {
		data["category"] = p.Category
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post BlogPost) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	if post.Canonical != "" {
		postURL = AbsoluteURL(cfg.URL, post.Canonical)
	}
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   MetaDescription(post.MetaDescription, post.Excerpt, 0),
		"datePublished": post.CreatedAt,
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	return marshalJsonLD(data)
}

// ProductMeta assembles the PageMeta for a product detail page.
func ProductMeta(cfg SiteConfig, p Product) PageMeta {
	meta := PageMeta{
		Title:       p.Title + " — " + cfg.Name,
		Description: MetaDescription(p.Description, cfg.Description, 0),
		URL:         BuildURL(cfg.URL, "products", p.Slug),
		OGType:      "product",
	}
	if len(p.Images) > 0 {
		meta.OGImage = AbsoluteURL(cfg.URL, p.Images[0])
	}
	return meta
}

// PostMeta assembles the PageMeta for a blog post, honoring SEO overrides.
func PostMeta(cfg SiteConfig, post BlogPost) PageMeta {
	title := post.MetaTitle
	if title == "" {
		title = post.Title
	}
	meta := PageMeta{
		Title:       title + " — " + cfg.Name,
		Description: MetaDescription(post.MetaDescription, post.Excerpt, 0),
		URL:         BuildURL(cfg.URL, "blog", post.Slug),
		OGType:      "article",
	}
	if post.Canonical != "" {
		meta.URL = AbsoluteURL(cfg.URL, post.Canonical)
	}
	img := post.OGImage
	if img == "" {
		img = post.CoverImage
	}
	if img != "" {
		meta.OGImage = AbsoluteURL(cfg.URL, img)
	}
	return meta
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
