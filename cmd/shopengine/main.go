// Command shopengine runs a storefront with the built-in default views.
// It is meant as a quick start and a development server; real deployments
// typically import the shopengine package and supply their own templates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/eringen/shopengine"
	"github.com/eringen/shopengine/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	addr := pflag.StringP("addr", "a", "", "listen address (overrides SITE_ADDR)")
	dbPath := pflag.StringP("db", "d", "", "sqlite database path (overrides DATABASE_PATH)")
	seed := pflag.Bool("seed", false, "insert demo products and a demo post, then continue serving")
	showVersion := pflag.BoolP("version", "v", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("shopengine %s\n", version)
		return
	}

	cfg := shopengine.SiteConfig{
		Name:        shopengine.EnvOr("SITE_NAME", "Shopengine"),
		URL:         shopengine.EnvOr("SITE_URL", "http://localhost:8080"),
		Description: shopengine.EnvOr("SITE_DESCRIPTION", ""),
		Author:      shopengine.EnvOr("SITE_AUTHOR", ""),

		Addr:         shopengine.EnvOr("SITE_ADDR", ":8080"),
		DatabasePath: shopengine.EnvOr("DATABASE_PATH", "shopengine.db"),

		AdminUser:     shopengine.MustEnv("ADMIN_USER"),
		AdminPassword: shopengine.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: shopengine.MustEnv("SESSION_SECRET"),
		CookieSecure:  shopengine.EnvOr("COOKIE_SECURE", "true") == "true",

		StripeSecretKey:     shopengine.EnvOr("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: shopengine.EnvOr("STRIPE_WEBHOOK_SECRET", ""),
		Currency:            shopengine.EnvOr("CURRENCY", "USD"),
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	app := shopengine.New(cfg, views.Funcs(cfg))
	if err := app.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if *seed {
		if err := shopengine.Seed(app.Store); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding: %v\n", err)
			os.Exit(1)
		}
	}

	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
