package shopengine

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// Checkout creates hosted payment sessions from the current cart and
// acknowledges processor webhooks. The Stripe client is constructed once
// from config at startup; when no secret key is configured the component
// stays inert and checkout requests fail with a structured error.
type Checkout struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	store         *Store
}

// maxWebhookBody caps how much of a webhook payload is read. Processor
// events are a few KB; anything past the cap fails signature verification.
const maxWebhookBody = 1 << 16

// ErrCartEmpty is returned when checkout is invoked with no resolvable lines.
var ErrCartEmpty = errors.New("cart is empty")

// ErrNotConfigured is returned when the payment processor credentials are absent.
var ErrNotConfigured = errors.New("payment processor is not configured")

// NewCheckout builds the checkout component. secretKey may be empty, in
// which case Configured reports false and CreateSession always fails.
func NewCheckout(cfg SiteConfig, store *Store) *Checkout {
	ck := &Checkout{
		webhookSecret: cfg.StripeWebhookSecret,
		successURL:    BuildURL(cfg.URL, "checkout", "success"),
		cancelURL:     BuildURL(cfg.URL, "cart"),
		store:         store,
	}
	if cfg.StripeSecretKey != "" {
		ck.api = client.New(cfg.StripeSecretKey, nil)
	}
	return ck
}

// Configured reports whether a processor API key was supplied.
func (ck *Checkout) Configured() bool {
	return ck.api != nil
}

// lineItems resolves the cart against the catalog and builds one Stripe line
// item per resolved product. Unresolvable identifiers are dropped, matching
// the cart page.
func (ck *Checkout) lineItems(cart Cart) ([]*stripe.CheckoutSessionLineItemParams, error) {
	items, err := CartItems(cart, ck.store)
	if err != nil {
		return nil, err
	}
	var lines []*stripe.CheckoutSessionLineItemParams
	for _, item := range items {
		p := item.Product
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(p.Title),
		}
		if desc := MetaDescription(p.Description, "", 0); desc != "" {
			productData.Description = stripe.String(desc)
		}
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(lowerCurrency(p.Currency)),
				UnitAmount:  stripe.Int64(p.PriceCents),
				ProductData: productData,
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	return lines, nil
}

func lowerCurrency(code string) string {
	if code == "" {
		return "usd"
	}
	b := []byte(code)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch + ('a' - 'A')
		}
	}
	return string(b)
}

// CreateSession reads the cart, builds line items, and requests a hosted
// payment session. It returns the session ID and redirect URL. Single
// attempt, no retry: a transient processor failure surfaces immediately.
func (ck *Checkout) CreateSession(cart Cart) (id, url string, err error) {
	if !ck.Configured() {
		return "", "", ErrNotConfigured
	}
	lines, err := ck.lineItems(cart)
	if err != nil {
		return "", "", err
	}
	if len(lines) == 0 {
		return "", "", ErrCartEmpty
	}
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lines,
		SuccessURL: stripe.String(ck.successURL),
		CancelURL:  stripe.String(ck.cancelURL),
	}
	sess, err := ck.api.CheckoutSessions.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}

// handleCheckout is the POST /api/checkout endpoint. The server reads the
// cart cookie itself; clients cannot supply line items.
func (a *App) handleCheckout(c echo.Context) error {
	cart := ReadCart(c)
	if cart.Count() == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Your cart is empty."})
	}
	if !a.checkout.Configured() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Checkout is not configured on this deployment."})
	}
	id, url, err := a.checkout.CreateSession(cart)
	if err != nil {
		if errors.Is(err, ErrCartEmpty) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Your cart is empty."})
		}
		c.Logger().Errorf("checkout session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Payment session could not be created."})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "url": url})
}

// handleWebhook accepts asynchronous processor callbacks. With no signing
// secret configured, or no signature header present, the payload is
// acknowledged without verification. A signature mismatch is a 400. Verified
// events are acknowledged and no further state transition happens here.
func (a *App) handleWebhook(c echo.Context) error {
	if a.checkout.webhookSecret == "" {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}
	sig := c.Request().Header.Get("Stripe-Signature")
	if sig == "" {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable payload"})
	}
	if _, err := webhook.ConstructEvent(payload, sig, a.checkout.webhookSecret); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
