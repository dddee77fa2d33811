package shopengine

import "fmt"

// Seed loads demo catalog and blog data into an empty store. Existing rows
// with the same slugs are left untouched; Seed is safe to re-run.
func Seed(s *Store) error {
	products := []Product{
		{
			Slug:        "green-tea",
			Title:       "Green Tea",
			Description: "Refreshing green tea rich in antioxidants.",
			PriceCents:  599,
			Currency:    "USD",
			Images:      []string{"/products/green-tea.svg"},
			Category:    "tea",
			Type:        "beverage",
			Ingredients: []string{"green tea leaves"},
			Needs:       []string{"immunity", "detox"},
			Tags:        []string{"antioxidants"},
			Published:   true,
		},
		{
			Slug:        "turmeric",
			Title:       "Turmeric Powder",
			Description: "Curcumin-rich turmeric powder.",
			PriceCents:  899,
			Currency:    "USD",
			Images:      []string{"/products/turmeric.svg"},
			Category:    "spices",
			Type:        "supplement",
			Ingredients: []string{"turmeric"},
			Needs:       []string{"inflammation"},
			Tags:        []string{"curcumin"},
			Published:   true,
		},
		{
			Slug:        "super-greens",
			Title:       "Super Greens Mix",
			Description: "Daily greens blend for overall wellness.",
			PriceCents:  1999,
			Currency:    "USD",
			Images:      []string{"/products/super-greens.svg"},
			Category:    "mix",
			Type:        "supplement",
			Ingredients: []string{"spirulina", "moringa", "chlorella"},
			Needs:       []string{"energy", "detox"},
			Tags:        []string{"greens"},
			Published:   true,
		},
	}
	for _, p := range products {
		exists, err := s.HasProductSlug(p.Slug)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.Slug, err)
		}
		if exists {
			continue
		}
		if _, err := s.SaveProduct(p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Slug, err)
		}
	}

	post := BlogPost{
		Slug:            "white-tea-benefits",
		Title:           "White Tea Benefits",
		Excerpt:         "White tea is the least processed tea and packs gentle antioxidants.",
		Content:         "White tea is harvested early and dried gently, preserving catechins. It has a light flavor and may support heart and skin health.\n\n**How to brew:** 75-80°C for 3-4 minutes.",
		CoverImage:      "/blog/white-tea.webp",
		Tags:            []string{"tea", "wellness"},
		MetaTitle:       "White Tea Benefits",
		MetaDescription: "Learn the benefits of white tea, how to brew it, and why its antioxidants matter.",
		OGImage:         "/blog/white-tea.webp",
		Canonical:       "/blog/white-tea-benefits",
		Published:       true,
	}
	exists, err := s.HasPostSlug(post.Slug)
	if err != nil {
		return fmt.Errorf("seed post %s: %w", post.Slug, err)
	}
	if !exists {
		if _, err := s.SavePost(post); err != nil {
			return fmt.Errorf("seed post %s: %w", post.Slug, err)
		}
	}
	return nil
}
