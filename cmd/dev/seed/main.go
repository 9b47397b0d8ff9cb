package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/actor"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/config"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/db"
)

// Seeds a super admin and the default settings documents, then prints a
// session token for local API calls.
func main() {
	cfg := config.Load()

	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@local.test"
	}
	name := os.Getenv("SEED_ADMIN_NAME")
	if name == "" {
		name = "Local Admin"
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	actors := actor.NewRepository(conn)
	a, err := actors.Upsert(ctx, email, name, actor.RoleSuperAdmin, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed actor failed: %v\n", err)
		os.Exit(1)
	}

	settings := charges.NewRepository(conn)
	existing, err := settings.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load settings failed: %v\n", err)
		os.Exit(1)
	}
	if !existing.GlobalDefault.IsSet() && !existing.GlobalWastage.IsSet() && len(existing.Charges) == 0 {
		if err := settings.SaveConfig(ctx, charges.Config{}); err != nil {
			fmt.Fprintf(os.Stderr, "save charge config failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := settings.SaveTaxSettings(ctx, charges.DefaultTaxSettings()); err != nil {
		fmt.Fprintf(os.Stderr, "save tax settings failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("super admin: %s (%s)\n", a.Email, a.ID)

	if cfg.AuthSecret != "" {
		ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
		token, err := actor.IssueSessionToken(a.ID, cfg.AuthSecret, ttl, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("session token: %s\n", token)
	} else {
		fmt.Println("AUTH_SECRET not set; use the X-Actor-ID header in dev")
	}
}
