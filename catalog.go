package shopengine

import "github.com/labstack/echo/v4"

// featuredCount is how many products the home page shows.
const featuredCount = 8

// ParseProductFilter rebuilds a ProductFilter from the request query string.
// All parameters are optional; an empty q disables the text predicate
// entirely rather than matching nothing.
func ParseProductFilter(c echo.Context) ProductFilter {
	return ProductFilter{
		Query:      c.QueryParam("q"),
		Category:   c.QueryParam("cat"),
		Type:       c.QueryParam("type"),
		Ingredient: c.QueryParam("ing"),
		Need:       c.QueryParam("need"),
		Tag:        c.QueryParam("tag"),
		Sort:       c.QueryParam("sort"),
	}
}

// FeaturedProducts slices the newest published products for the home page.
func FeaturedProducts(store *Store) ([]Product, error) {
	products, err := store.ListProducts(ProductFilter{})
	if err != nil {
		return nil, err
	}
	if len(products) > featuredCount {
		products = products[:featuredCount]
	}
	return products, nil
}
