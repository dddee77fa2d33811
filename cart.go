package shopengine

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
)

// cartCookieName is the single cookie holding the whole cart.
const cartCookieName = "cart"

// Cart maps product identifiers to positive quantities. The cookie is the
// only copy; the server keeps no session-keyed cart state, so concurrent
// tabs are last-write-wins.
type Cart map[string]int

// decodeCart parses a raw cookie value into a Cart. Any failure (empty
// value, bad escaping, malformed JSON) yields the empty cart, never an
// error. Non-positive quantities are dropped.
func decodeCart(raw string) Cart {
	if raw == "" {
		return Cart{}
	}
	if unescaped, err := url.QueryUnescape(raw); err == nil {
		raw = unescaped
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil || cart == nil {
		return Cart{}
	}
	for id, qty := range cart {
		if qty <= 0 {
			delete(cart, id)
		}
	}
	return cart
}

func (cart Cart) encode() string {
	b, err := json.Marshal(cart)
	if err != nil {
		return "%7B%7D"
	}
	return url.QueryEscape(string(b))
}

// Add increments the quantity for id, inserting the line when absent.
// Quantities below one count as a single unit.
func (cart Cart) Add(id string, qty int) {
	if id == "" {
		return
	}
	if qty < 1 {
		qty = 1
	}
	cart[id] += qty
}

// Remove deletes the line for id entirely. There is no partial decrement.
func (cart Cart) Remove(id string) {
	delete(cart, id)
}

// Count returns the total number of units across all lines, for the badge.
func (cart Cart) Count() int {
	n := 0
	for _, qty := range cart {
		n += qty
	}
	return n
}

// IDs returns the product identifiers referenced by the cart.
func (cart Cart) IDs() []string {
	ids := make([]string, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	return ids
}

// ReadCart parses the cart cookie from the request. Absent or malformed
// cookies yield the empty cart.
func ReadCart(c echo.Context) Cart {
	cookie, err := c.Cookie(cartCookieName)
	if err != nil {
		return Cart{}
	}
	return decodeCart(cookie.Value)
}

// writeCart serializes the cart back into the response cookie.
func (a *App) writeCart(c echo.Context, cart Cart) {
	c.SetCookie(&http.Cookie{
		Name:     cartCookieName,
		Value:    cart.encode(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
		MaxAge:   int(a.Config.CartMaxAge / time.Second),
	})
}

// CartItems joins the cart against the catalog. Identifiers that no longer
// resolve to a published product are silently dropped. The cookie keeps the
// stale line until a later write reconciles it.
func CartItems(cart Cart, store *Store) ([]CartItem, error) {
	products, err := store.GetProductsByIDs(cart.IDs())
	if err != nil {
		return nil, err
	}
	var items []CartItem
	for _, p := range products {
		qty := cart[p.ID]
		if qty <= 0 {
			continue
		}
		items = append(items, CartItem{
			Product:  p,
			Quantity: qty,
			Total:    int64(qty) * p.PriceCents,
		})
	}
	return items, nil
}

// Subtotal sums the line totals of resolved cart items.
func Subtotal(items []CartItem) int64 {
	var sum int64
	for _, i := range items {
		sum += i.Total
	}
	return sum
}
