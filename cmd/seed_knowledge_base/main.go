package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/mindcheck-backend/internal/app"
	"github.com/yungbote/mindcheck-backend/internal/data/seed"
)

func main() {
	var file string
	var dryRun bool
	flag.StringVar(&file, "file", "", "seed YAML path (defaults to $"+seed.SeedFileEnv+" or the embedded knowledge base)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate the seed without writing")
	flag.Parse()

	if file != "" {
		_ = os.Setenv(seed.SeedFileEnv, file)
	}

	f, err := seed.Load()
	if err != nil {
		fmt.Printf("load seed: %v\n", err)
		os.Exit(1)
	}
	if dryRun {
		fmt.Printf("seed ok: symptoms=%d disorders=%d rules=%d\n", len(f.Symptoms), len(f.Disorders), len(f.Rules))
		return
	}

	log, err := app.NewLogger()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	dbService, err := app.OpenDatabase(log, cfg)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	defer dbService.Close()

	stats, err := seed.Apply(context.Background(), dbService.DB(), f, log)
	if err != nil {
		fmt.Printf("apply seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded: symptoms=%d disorders=%d rules=%d\n", stats.Symptoms, stats.Disorders, stats.Rules)
}
