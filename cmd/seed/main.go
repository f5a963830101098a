package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/armory-backend/internal/app"
	"github.com/yungbote/armory-backend/internal/data/seed"
)

func main() {
	path := flag.String("file", "", "seed YAML file (defaults to SEED_FILE, then the bundled data set)")
	validateOnly := flag.Bool("validate", false, "validate the seed file and exit")
	flag.Parse()

	_ = godotenv.Load()

	if *path == "" {
		*path = os.Getenv("SEED_FILE")
	}

	if *validateOnly {
		f, err := seed.Load(*path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid seed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("seed ok: %d materials, %d compositions, %d weapons\n",
			len(f.Materials), len(f.Compositions), len(f.Weapons))
		return
	}

	ctx := context.Background()
	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if _, err := a.Seed(ctx, *path); err != nil {
		a.Log.Error("Seeding failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
