package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"userbase.dev/internal/auth"
	"userbase.dev/internal/migrate"
	"userbase.dev/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	var (
		dsn     = flag.String("dsn", os.Getenv("PG_DSN"), "PostgreSQL DSN")
		timeout = flag.Duration("timeout", 30*time.Second, "Overall command timeout")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|status|seed]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := pg.Open(*dsn, pg.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	mgr, err := migrate.NewManager(store.DB())
	if err != nil {
		log.Fatalf("init migrations: %v", err)
	}

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "status":
		err = mgr.Status(ctx)
	case "seed":
		err = seed(ctx, store)
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

func seed(ctx context.Context, store *pg.Store) error {
	hasher, err := auth.NewHasher(0)
	if err != nil {
		return err
	}
	created, err := migrate.SeedAdmin(ctx, store, hasher, migrate.AdminSeed{
		Username: os.Getenv("SEED_ADMIN_USERNAME"),
		Email:    os.Getenv("SEED_ADMIN_EMAIL"),
		Password: os.Getenv("SEED_ADMIN_PASSWORD"),
	})
	if err != nil {
		return err
	}
	if created {
		log.Println("admin account created")
	} else {
		log.Println("admin account already present or not configured")
	}
	return nil
}
