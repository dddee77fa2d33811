package shopengine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database and provides CRUD operations for products,
// blog posts, and uploaded image metadata.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price_cents INTEGER NOT NULL DEFAULT 0,
    currency TEXT NOT NULL DEFAULT 'USD',
    images TEXT NOT NULL DEFAULT '[]',
    category TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    ingredients TEXT NOT NULL DEFAULT '[]',
    needs TEXT NOT NULL DEFAULT '[]',
    tags TEXT NOT NULL DEFAULT '[]',
    published INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    cover_image TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    published INTEGER NOT NULL DEFAULT 1,
    meta_title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    og_image TEXT NOT NULL DEFAULT '',
    canonical TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// encodeStringList serializes a list attribute as JSON text. A nil slice
// encodes as the empty array so stored values are always valid JSON.
func encodeStringList(vals []string) string {
	if vals == nil {
		vals = []string{}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeStringList decodes a JSON text column into a string slice. Malformed
// stored values are rejected with an error rather than silently coerced.
func decodeStringList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var vals []string
	if err := json.Unmarshal([]byte(raw), &vals); err != nil {
		return nil, fmt.Errorf("decode list attribute %q: %w", raw, err)
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return vals, nil
}

// escapeLike escapes LIKE metacharacters so user-supplied terms match as
// literal substrings. Pair with ESCAPE '\' on the LIKE clause.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// nowStamp returns the current UTC time with fixed-width nanosecond
// precision so that rows created in the same second still order correctly
// when compared as strings.
func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// --- Products ---

const productColumns = `id, slug, title, description, price_cents, currency, images, category, type, ingredients, needs, tags, published, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	var images, ingredients, needs, tags string
	var published int
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.PriceCents, &p.Currency,
		&images, &p.Category, &p.Type, &ingredients, &needs, &tags, &published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if p.Images, err = decodeStringList(images); err != nil {
		return Product{}, err
	}
	if p.Ingredients, err = decodeStringList(ingredients); err != nil {
		return Product{}, err
	}
	if p.Needs, err = decodeStringList(needs); err != nil {
		return Product{}, err
	}
	if p.Tags, err = decodeStringList(tags); err != nil {
		return Product{}, err
	}
	p.Published = published == 1
	return p, nil
}

func collectProducts(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// sortClause maps a filter sort key to an ORDER BY expression. Unknown or
// absent keys sort newest-first. Tie-break is whatever SQLite yields.
func sortClause(sortKey string) string {
	switch sortKey {
	case "price-asc":
		return "price_cents ASC"
	case "price-desc":
		return "price_cents DESC"
	case "new", "newest":
		return "created_at DESC"
	default:
		return "created_at DESC"
	}
}

// ListProducts returns published products matching all supplied predicates.
// Free-text, category, type, and the sort order are pushed into the SQL
// query; ingredient/need/tag membership is evaluated in-process because
// those attributes live in JSON columns.
func (s *Store) ListProducts(f ProductFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE published = 1`
	var args []any
	if q := strings.TrimSpace(f.Query); q != "" {
		q = escapeLike(q)
		query += ` AND (lower(title) LIKE '%' || lower(?) || '%' ESCAPE '\' OR lower(description) LIKE '%' || lower(?) || '%' ESCAPE '\')`
		args = append(args, q, q)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY ` + sortClause(f.Sort)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	return filterListAttributes(products, f), nil
}

// filterListAttributes applies the ingredient/need/tag membership predicates
// to an already-materialized result set.
func filterListAttributes(products []Product, f ProductFilter) []Product {
	if f.Ingredient == "" && f.Need == "" && f.Tag == "" {
		return products
	}
	var out []Product
	for _, p := range products {
		if f.Ingredient != "" && !containsString(p.Ingredients, f.Ingredient) {
			continue
		}
		if f.Need != "" && !containsString(p.Needs, f.Need) {
			continue
		}
		if f.Tag != "" && !containsString(p.Tags, f.Tag) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// GetProductBySlug returns a single published product by slug.
func (s *Store) GetProductBySlug(slug string) (Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE slug = ? AND published = 1`, slug)
	return scanProduct(row)
}

// HasProductSlug reports whether any product row, published or not, uses slug.
func (s *Store) HasProductSlug(slug string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM products WHERE slug = ?`, slug).Scan(&n)
	return n > 0, err
}

// GetProductAny returns a product by ID regardless of published status (for admin).
func (s *Store) GetProductAny(id string) (Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// GetProductsByIDs resolves cart identifiers against the catalog. IDs that
// no longer resolve to a published product are simply absent from the result.
func (s *Store) GetProductsByIDs(ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.Query(`SELECT `+productColumns+` FROM products WHERE published = 1 AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListAllProducts returns every product (published and drafts) newest first.
func (s *Store) ListAllProducts() ([]Product, error) {
	rows, err := s.db.Query(`SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// SearchProducts runs the instant-search query: a case-insensitive OR over
// title, slug and description for the whole phrase and each word, published
// rows only, ordered by title, capped at limit.
func (s *Store) SearchProducts(q string, limit int) ([]Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 6
	}
	if limit > 24 {
		limit = 24
	}
	terms := append([]string{q}, strings.Fields(q)...)
	var conds []string
	var args []any
	for _, term := range terms {
		term = escapeLike(term)
		conds = append(conds,
			`lower(title) LIKE '%' || lower(?) || '%' ESCAPE '\'`,
			`lower(slug) LIKE '%' || lower(?) || '%' ESCAPE '\'`,
			`lower(description) LIKE '%' || lower(?) || '%' ESCAPE '\'`)
		args = append(args, term, term, term)
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE published = 1 AND (` +
		strings.Join(conds, " OR ") + `) ORDER BY title ASC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// SaveProduct upserts a product: update when ID is present, otherwise create
// with a fresh identifier. Returns the stored product.
func (s *Store) SaveProduct(p Product) (Product, error) {
	now := nowStamp()
	p.UpdatedAt = now
	published := 0
	if p.Published {
		published = 1
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
		p.CreatedAt = now
		_, err := s.db.Exec(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Slug, p.Title, p.Description, p.PriceCents, p.Currency,
			encodeStringList(p.Images), p.Category, p.Type,
			encodeStringList(p.Ingredients), encodeStringList(p.Needs), encodeStringList(p.Tags),
			published, p.CreatedAt, p.UpdatedAt)
		return p, err
	}
	_, err := s.db.Exec(`UPDATE products SET slug = ?, title = ?, description = ?, price_cents = ?, currency = ?, images = ?, category = ?, type = ?, ingredients = ?, needs = ?, tags = ?, published = ?, updated_at = ? WHERE id = ?`,
		p.Slug, p.Title, p.Description, p.PriceCents, p.Currency,
		encodeStringList(p.Images), p.Category, p.Type,
		encodeStringList(p.Ingredients), encodeStringList(p.Needs), encodeStringList(p.Tags),
		published, p.UpdatedAt, p.ID)
	return p, err
}

// DeleteProduct removes a product by ID. Carts referencing the ID keep the
// stale line until their next read reconciles it.
func (s *Store) DeleteProduct(id string) error {
	_, err := s.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	return err
}

// ListCategories returns a sorted, deduplicated slice of categories from
// published products, for the filter bar.
func (s *Store) ListCategories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM products WHERE published = 1 AND category != '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// --- Blog posts ---

const postColumns = `id, slug, title, excerpt, content, cover_image, tags, published, meta_title, meta_description, og_image, canonical, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (BlogPost, error) {
	var p BlogPost
	var tags string
	var published int
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.CoverImage,
		&tags, &published, &p.MetaTitle, &p.MetaDescription, &p.OGImage, &p.Canonical,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return BlogPost{}, err
	}
	if p.Tags, err = decodeStringList(tags); err != nil {
		return BlogPost{}, err
	}
	p.Published = published == 1
	return p, nil
}

func collectPosts(rows *sql.Rows) ([]BlogPost, error) {
	defer rows.Close()
	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns all published posts newest first.
func (s *Store) ListPosts() ([]BlogPost, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// ListPostTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListPostTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		tags, err := decodeStringList(raw)
		if err != nil {
			return nil, err
		}
		for _, t := range tags {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPostBySlug returns a single published post by slug.
func (s *Store) GetPostBySlug(slug string) (BlogPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
	return scanPost(row)
}

// HasPostSlug reports whether any post row, published or not, uses slug.
func (s *Store) HasPostSlug(slug string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM posts WHERE slug = ?`, slug).Scan(&n)
	return n > 0, err
}

// GetPostAny returns a post by ID regardless of published status (for admin).
func (s *Store) GetPostAny(id string) (BlogPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// ListAllPosts returns every post (published and drafts) newest first.
func (s *Store) ListAllPosts() ([]BlogPost, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// SavePost upserts a blog post: update when ID is present, otherwise create.
// Tags are normalized to lowercase. Returns the stored post.
func (s *Store) SavePost(p BlogPost) (BlogPost, error) {
	normalized := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		normalized[i] = strings.ToLower(strings.TrimSpace(t))
	}
	p.Tags = normalized
	now := nowStamp()
	p.UpdatedAt = now
	published := 0
	if p.Published {
		published = 1
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
		p.CreatedAt = now
		_, err := s.db.Exec(`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Slug, p.Title, p.Excerpt, p.Content, p.CoverImage,
			encodeStringList(p.Tags), published, p.MetaTitle, p.MetaDescription, p.OGImage, p.Canonical,
			p.CreatedAt, p.UpdatedAt)
		return p, err
	}
	_, err := s.db.Exec(`UPDATE posts SET slug = ?, title = ?, excerpt = ?, content = ?, cover_image = ?, tags = ?, published = ?, meta_title = ?, meta_description = ?, og_image = ?, canonical = ?, updated_at = ? WHERE id = ?`,
		p.Slug, p.Title, p.Excerpt, p.Content, p.CoverImage,
		encodeStringList(p.Tags), published, p.MetaTitle, p.MetaDescription, p.OGImage, p.Canonical,
		p.UpdatedAt, p.ID)
	return p, err
}

// DeletePost removes a post by ID.
func (s *Store) DeletePost(id string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

// --- Images ---

// SaveImage stores metadata for an uploaded image.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns uploaded image metadata, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}
