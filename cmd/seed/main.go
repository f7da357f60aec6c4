package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"ubot-platform/internal/application"
	"ubot-platform/internal/config"
	"ubot-platform/internal/infra/db"
	"ubot-platform/internal/infra/logging"
)

// Usage: seed [-config config.yaml] [id:Display Name ...]
// Registers the issuers shown on inspected vouchers and gives each one a
// starter voucher when it has none.
func main() {
	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	app := application.Build(cfg, store, nil, nil, logger)

	seed := [][2]string{{"admin", "Administrator"}}
	for _, arg := range flag.Args() {
		id, name, _ := strings.Cut(arg, ":")
		seed = append(seed, [2]string{id, name})
	}

	for _, s := range seed {
		o, err := app.EnsureOwner(ctx, s[0], s[1])
		if err != nil {
			log.Fatalf("register owner %q: %v", s[0], err)
		}
		list, err := app.VouchersByOwner(ctx, o.ID)
		if err != nil {
			log.Fatalf("list vouchers of %q: %v", o.ID, err)
		}
		if len(list) > 0 {
			fmt.Printf("%s (%s) already has %d vouchers. No changes.\n", o.ID, o.Username, len(list))
			continue
		}
		v, err := app.IssueVoucher(ctx, o.ID, cfg.Vouchers.DefaultValidityDays)
		if err != nil {
			log.Fatalf("issue voucher for %q: %v", o.ID, err)
		}
		fmt.Printf("seeded: %s (%s) voucher=%s expires=%s\n", o.ID, o.Username, v.Code, v.ExpiresAt.Format(time.RFC3339))
	}

	fmt.Println("✅ Seeding complete.")
}
