package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"dinner-planner/internal/app"
	"dinner-planner/internal/catalog"
	"dinner-planner/internal/clipper"
	"dinner-planner/internal/config"
	"dinner-planner/internal/database"
	"dinner-planner/internal/export"
	"dinner-planner/internal/ghost"
	"dinner-planner/internal/llm"
	"dinner-planner/internal/logger"
	"dinner-planner/internal/metrics"
	"dinner-planner/internal/shopping"
	"dinner-planner/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, args []string) error {
	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	catalogRepo := catalog.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	textGen, err := llm.NewTextGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize text generator: %w", err)
	}
	if c, ok := textGen.(llm.Closer); ok {
		defer c.Close()
	}

	var publisher ghost.Publisher
	if cfg.RequireGhost() == nil {
		publisher = ghost.NewClient(cfg)
	}

	application := app.NewApp(catalogRepo, clipper.NewClipper(textGen, metricsStore), publisher)

	switch command {
	case "import":
		return runImport(ctx, application, args)
	case "dump":
		return runDump(ctx, application, args)
	case "plan":
		return runPlan(ctx, cfg, application, args)
	case "clip":
		return runClip(ctx, application, args)
	case "remove":
		return runRemove(ctx, application, args)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(args)

		affected, err := metricsStore.Cleanup(ctx, *days)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runImport(ctx context.Context, a *app.App, args []string) error {
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	path := importCmd.String("file", "", "Catalog file to import (overrides -dir and -name)")
	dir := importCmd.String("dir", ".", "Directory holding the catalog file")
	name := importCmd.String("name", "dinners", "Catalog file name")
	importCmd.Parse(args)

	var (
		file   *storage.CatalogFile
		source string
		err    error
	)
	if *path != "" {
		source = *path
		file, err = storage.LoadFile(*path)
	} else {
		store, serr := storage.NewCatalogStore(*dir)
		if serr != nil {
			return serr
		}
		if !store.Exists(*name) {
			return fmt.Errorf("catalog %q not found in %s", *name, *dir)
		}
		source = fmt.Sprintf("%s/%s.json", *dir, strings.TrimSuffix(*name, ".json"))
		file, err = store.Load(*name)
	}
	if err != nil {
		return err
	}

	n, err := a.ImportCatalog(ctx, file)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %s. The catalog now holds %d meals.\n", source, n)
	return nil
}

func runRemove(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dinner-planner remove <meal name>")
	}
	removed, err := a.RemoveMeal(ctx, args[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("meal %q is not in the catalog", args[0])
	}
	fmt.Printf("Removed '%s'.\n", args[0])
	return nil
}

func runDump(ctx context.Context, a *app.App, args []string) error {
	dumpCmd := flag.NewFlagSet("dump", flag.ExitOnError)
	dir := dumpCmd.String("dir", ".", "Directory to write the catalog file to")
	name := dumpCmd.String("name", "dinners", "Catalog file name")
	dumpCmd.Parse(args)

	file, err := a.DumpCatalog(ctx)
	if err != nil {
		return err
	}
	store, err := storage.NewCatalogStore(*dir)
	if err != nil {
		return err
	}
	if err := store.Save(*name, file); err != nil {
		return err
	}
	fmt.Printf("Wrote %d meals to %s/%s.json.\n", len(file.Meals), *dir, strings.TrimSuffix(*name, ".json"))
	return nil
}

func runPlan(ctx context.Context, cfg *config.Config, a *app.App, args []string) error {
	planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
	configPath := planCmd.String("config", cfg.PlanConfigPath, "YAML plan config")
	seed := planCmd.Uint64("seed", 0, "Seed for a reproducible plan")
	doExport := planCmd.Bool("export", false, "Write the plan to an xlsx workbook")
	exportDir := planCmd.String("dir", cfg.ExportDir, "Directory for the exported workbook")
	doPublish := planCmd.Bool("publish", false, "Publish the plan to Ghost")
	draft := planCmd.Bool("draft", false, "With -publish, create a draft post")
	asJSON := planCmd.Bool("json", false, "Print the plan and shopping list as JSON")
	planCmd.Parse(args)

	pc, err := config.LoadPlanConfig(*configPath)
	if err != nil {
		return err
	}
	planCmd.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			pc.Seed = seed
		}
	})

	result, err := a.Plan(ctx, pc)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Plan any `json:"plan"`
			List any `json:"shopping_list"`
		}{result.Plan, result.List}); err != nil {
			return err
		}
	} else {
		printResult(result)
	}

	now := time.Now()
	if *doExport {
		path, err := a.Export(result, *exportDir, now)
		if err != nil {
			return err
		}
		fmt.Printf("\nExported meal plan to %s\n", path)
	}
	if *doPublish {
		post, err := a.Publish(ctx, result, now, !*draft)
		if err != nil {
			return err
		}
		fmt.Printf("\nPublished '%s' (%s)\n", post.Title, post.Status)
	}
	return nil
}

func runClip(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dinner-planner clip <url>")
	}
	meal, err := a.ClipMeal(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Saved '%s' (%s) with %d ingredients.\n", export.Title(meal.ID), strings.Join(meal.Categories, ", "), len(meal.Ingredients))
	return nil
}

func printResult(result *app.Result) {
	fmt.Printf("=== DINNERS (seed %d) ===\n", result.Plan.Seed)
	schedule := export.NewSchedule(result.Plan, result.Catalog)
	for _, row := range schedule.Rows {
		fmt.Printf("%-10s: %s\n", row[0], row[1])
	}

	fmt.Println("\n=== SHOPPING LIST ===")
	fmt.Printf("%-24s %-24s %s\n", shopping.HeaderStaples, shopping.HeaderVeggiesAndToppings, shopping.HeaderMealIngredients)
	for _, row := range result.List.Rows() {
		fmt.Printf("%-24s %-24s %s\n", row[0], row[1], row[2])
	}
}

func printUsage() {
	fmt.Println("Usage: dinner-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import             Replace the catalog with a JSON catalog file")
	fmt.Println("  dump               Write the stored catalog back to a JSON file")
	fmt.Println("  plan               Plan the week's dinners and build the shopping list")
	fmt.Println("  clip <url>         Add a meal from a recipe web page")
	fmt.Println("  remove <name>      Remove a meal from the catalog")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
