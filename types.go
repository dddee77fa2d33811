package shopengine

// Product is the core catalog type stored in SQLite and rendered by templates.
// PriceCents is the unit price in minor currency units; list-valued
// attributes (Images, Ingredients, Needs, Tags) are stored as JSON text
// columns and decoded with validation at the store boundary.
type Product struct {
	ID          string
	Slug        string
	Title       string
	Description string
	PriceCents  int64
	Currency    string
	Images      []string
	Category    string
	Type        string
	Ingredients []string
	Needs       []string
	Tags        []string
	Published   bool
	CreatedAt   string // RFC 3339
	UpdatedAt   string // RFC 3339
}

// Link returns the site-relative URL of the product detail page.
func (p Product) Link() string {
	return "/products/" + p.Slug + "/"
}

// BlogPost is a blog entry with optional per-page SEO overrides.
type BlogPost struct {
	ID         string
	Slug       string
	Title      string
	Excerpt    string
	Content    string
	CoverImage string
	Tags       []string
	Published  bool

	MetaTitle       string
	MetaDescription string
	OGImage         string
	Canonical       string

	CreatedAt string // RFC 3339
	UpdatedAt string // RFC 3339
}

// Link returns the site-relative URL of the post.
func (p BlogPost) Link() string {
	return "/blog/" + p.Slug + "/"
}

// ProductFilter is the transient, request-scoped set of predicates over the
// catalog. Zero values leave that dimension unconstrained; supplied
// predicates are conjunctive across dimensions.
type ProductFilter struct {
	Query      string // case-insensitive substring over title OR description
	Category   string // exact match
	Type       string // exact match
	Ingredient string // membership in Ingredients
	Need       string // membership in Needs
	Tag        string // membership in Tags
	Sort       string // "price-asc", "price-desc", "new"/"newest"; default newest
}

// CartItem is a cart line joined against the catalog for display.
type CartItem struct {
	Product  Product
	Quantity int
	Total    int64 // PriceCents * Quantity
}

// Image holds metadata for an uploaded image file.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website", "article" or "product"
	OGImage     string
}
