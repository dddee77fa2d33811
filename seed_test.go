package shopengine

import "testing"

func TestSeed(t *testing.T) {
	s := setupTestStore(t)

	if err := Seed(s); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	products, err := s.ListProducts(ProductFilter{})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("got %d products, want 3", len(products))
	}

	greens, err := s.ListProducts(ProductFilter{Need: "energy"})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(greens) != 1 || greens[0].Slug != "super-greens" {
		t.Errorf("need=energy returned %v, want only super-greens", slugs(greens))
	}

	posts, err := s.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "white-tea-benefits" {
		t.Errorf("posts = %v, want the white tea post", posts)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s := setupTestStore(t)

	if err := Seed(s); err != nil {
		t.Fatalf("first Seed failed: %v", err)
	}
	if err := Seed(s); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	products, _ := s.ListAllProducts()
	if len(products) != 3 {
		t.Errorf("got %d products after re-seed, want 3", len(products))
	}
	posts, _ := s.ListAllPosts()
	if len(posts) != 1 {
		t.Errorf("got %d posts after re-seed, want 1", len(posts))
	}
}

func TestSeedSkipsUnpublishedRows(t *testing.T) {
	s := setupTestStore(t)
	if err := Seed(s); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	p, err := s.GetProductBySlug("green-tea")
	if err != nil {
		t.Fatalf("GetProductBySlug failed: %v", err)
	}
	p.Published = false
	if _, err := s.SaveProduct(p); err != nil {
		t.Fatalf("SaveProduct failed: %v", err)
	}

	if err := Seed(s); err != nil {
		t.Fatalf("re-Seed with an unpublished seeded product failed: %v", err)
	}

	products, _ := s.ListAllProducts()
	if len(products) != 3 {
		t.Errorf("got %d products, want 3", len(products))
	}
	got, err := s.GetProductAny(p.ID)
	if err != nil {
		t.Fatalf("GetProductAny failed: %v", err)
	}
	if got.Published {
		t.Error("re-seeding must not republish an unpublished product")
	}
}

func TestSeedKeepsEdits(t *testing.T) {
	s := setupTestStore(t)
	if err := Seed(s); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	p, err := s.GetProductBySlug("green-tea")
	if err != nil {
		t.Fatalf("GetProductBySlug failed: %v", err)
	}
	p.PriceCents = 749
	if _, err := s.SaveProduct(p); err != nil {
		t.Fatalf("SaveProduct failed: %v", err)
	}

	if err := Seed(s); err != nil {
		t.Fatalf("re-Seed failed: %v", err)
	}
	p, _ = s.GetProductBySlug("green-tea")
	if p.PriceCents != 749 {
		t.Errorf("PriceCents = %d, re-seeding must not overwrite edits", p.PriceCents)
	}
}
