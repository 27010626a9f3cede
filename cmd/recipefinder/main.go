// Copyright 2025 the rag-recipe-finder authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	recipefinder "github.com/dswho2/rag-recipe-finder"
	"github.com/dswho2/rag-recipe-finder/ai"
	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/ingestion"
	"github.com/dswho2/rag-recipe-finder/reconcile"
	"github.com/dswho2/rag-recipe-finder/search"
)

func main() {
	app := &cli.App{
		Name:  "recipefinder",
		Usage: "Recipe ingestion and semantic search over a local vector index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest recipes from a JSON file",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source name recorded on ingested recipes",
						Value: "import",
					},
					&cli.BoolFlag{
						Name:  "batch",
						Usage: "Use the bulk ingestion path",
						Value: true,
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Search recipes by ingredients or free text",
				Action: searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringSliceFlag{
						Name:    "ingredient",
						Aliases: []string{"i"},
						Usage:   "Ingredient to search for (repeatable)",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Free-text query",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Minimum similarity score (0 disables the cutoff)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag every result must carry (repeatable)",
					},
					&cli.StringFlag{
						Name:  "cuisine",
						Usage: "Restrict results to a cuisine",
					},
				),
			},
			{
				Name:   "suggest",
				Usage:  "Suggest a recipe from available ingredients",
				Action: suggestCommand,
				Flags: append(databaseFlags(),
					&cli.StringSliceFlag{
						Name:     "ingredient",
						Aliases:  []string{"i"},
						Usage:    "Available ingredient (repeatable)",
						Required: true,
					},
				),
			},
			{
				Name:      "get",
				Usage:     "Print a stored recipe by ID",
				ArgsUsage: "<id>",
				Action:    getCommand,
				Flags:     databaseFlags(),
			},
			{
				Name:      "delete",
				Usage:     "Delete a recipe from the store and the index",
				ArgsUsage: "<id>",
				Action:    deleteCommand,
				Flags:     databaseFlags(),
			},
			{
				Name:   "reconcile",
				Usage:  "Repair drift between the record store and the vector index",
				Action: reconcileCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of recipes to check in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N recipes",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed index writes",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Delete orphaned records instead of re-indexing them",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// databaseFlags returns the flags shared by every command that opens a
// database: the store path plus the AI service endpoints.
func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "suggester-host",
			Usage: "Suggestion service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "suggester-model",
			Usage: "Suggestion model name",
			Value: "qwen2.5:3b",
		},
	}
}

// openDatabase builds a Database from the shared command flags.
func openDatabase(c *cli.Context) (*recipefinder.Database, error) {
	suggesterHost := c.String("suggester-host")
	if suggesterHost == "" {
		suggesterHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithSuggesterHost(suggesterHost),
		ai.WithSuggesterModel(c.String("suggester-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := recipefinder.NewDatabase(c.String("db"), recipefinder.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadRawRecipes parses a JSON file holding either a single recipe object
// or an array of recipe objects.
func loadRawRecipes(filename string) ([]*core.RawRecipe, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var raws []*core.RawRecipe
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
		return raws, nil
	}

	var raw core.RawRecipe
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return []*core.RawRecipe{&raw}, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one JSON file argument")
	}

	raws, err := loadRawRecipes(c.Args().First())
	if err != nil {
		return err
	}
	if len(raws) == 0 {
		fmt.Fprintln(os.Stderr, "No recipes to ingest.")
		return nil
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	coordinator, err := db.NewCoordinator()
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}
	defer coordinator.Release()

	ctx := context.Background()
	source := c.String("source")

	var outcomes []ingestion.Outcome
	if c.Bool("batch") {
		outcomes = coordinator.IngestBatch(ctx, raws, source)
	} else {
		for _, raw := range raws {
			outcomes = append(outcomes, coordinator.Ingest(ctx, raw, source))
		}
	}

	var stored, duplicates, failed int
	for _, outcome := range outcomes {
		switch outcome.Status {
		case ingestion.StatusStored:
			stored++
		case ingestion.StatusDuplicate:
			duplicates++
			fmt.Fprintf(os.Stderr, "duplicate of %s\n", outcome.DuplicateOf)
		case ingestion.StatusFailed:
			failed++
			fmt.Fprintf(os.Stderr, "failed: %v\n", outcome.Err)
		}
	}

	fmt.Printf("Ingested %d recipes: %d stored, %d duplicates, %d failed\n",
		len(outcomes), stored, duplicates, failed)
	if failed > 0 {
		return fmt.Errorf("%d recipes failed to ingest", failed)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ingredients := c.StringSlice("ingredient")
	freeText := c.String("query")
	if len(ingredients) == 0 && freeText == "" {
		return fmt.Errorf("at least one --ingredient or a --query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ranker, err := db.NewRanker()
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}

	results, err := ranker.Search(context.Background(), search.Query{
		Text:        freeText,
		Ingredients: ingredients,
		Limit:       c.Int("limit"),
		MinScore:    float32(c.Float64("min-score")),
		Cuisine:     c.String("cuisine"),
		Tags:        c.StringSlice("tag"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%s) [score %0.3f, overlap %0.1f%%]\n",
			i+1, hit.Title, hit.ID, hit.Score, hit.Overlap)
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ranker, err := db.NewRanker()
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}

	suggestion, err := ranker.Suggest(context.Background(), c.StringSlice("ingredient"))
	if err != nil {
		return fmt.Errorf("suggestion failed: %w", err)
	}

	fmt.Println(suggestion)
	return nil
}

func getCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one recipe ID argument")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	recipe, err := db.RecipeStore().GetRecipe(context.Background(), c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}

	printRecipe(recipe)
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one recipe ID argument")
	}
	id := c.Args().First()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	deleted, err := db.RecipeStore().DeleteRecipe(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if !deleted {
		fmt.Printf("Recipe %s not found\n", id)
		return nil
	}
	if err := db.VectorIndex().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete index entry: %w", err)
	}

	fmt.Printf("Deleted %s\n", id)
	return nil
}

func reconcileCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := &reconcile.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Prune:          c.Bool("prune"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	sweeper, err := db.NewSweeper(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create sweeper: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintln(os.Stderr)

	report, err := sweeper.Run(context.Background())
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	fmt.Printf("Scanned %d recipes: %d orphaned, %d reindexed, %d pruned, %d failed\n",
		report.Scanned, report.Orphaned, report.Reindexed, report.Pruned, report.Failed)
	return nil
}

func printRecipe(recipe *core.Recipe) {
	fmt.Printf("%s (%s)\n", recipe.Title, recipe.ID)
	if recipe.Description != "" {
		fmt.Println(recipe.Description)
	}
	if recipe.Cuisine != "" {
		fmt.Printf("Cuisine: %s\n", recipe.Cuisine)
	}
	if len(recipe.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(recipe.Tags, ", "))
	}
	if recipe.Servings > 0 {
		fmt.Printf("Servings: %d\n", recipe.Servings)
	}
	if recipe.PrepTime > 0 {
		fmt.Printf("Prep time: %d min\n", recipe.PrepTime)
	}
	if recipe.CookingTime > 0 {
		fmt.Printf("Cooking time: %d min\n", recipe.CookingTime)
	}
	fmt.Println("\nIngredients:")
	for _, ing := range recipe.Ingredients {
		fmt.Printf("  - %s\n", ing.Text)
	}
	fmt.Println("\nInstructions:")
	for _, step := range recipe.Instructions {
		fmt.Printf("  %d. %s\n", step.StepNumber, step.Text)
	}
	if recipe.Source != "" {
		fmt.Printf("\nSource: %s\n", recipe.Source)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
