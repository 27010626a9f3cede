package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/dswho2/rag-recipe-finder/core"
)

func TestDatabaseFlags(t *testing.T) {
	flags := databaseFlags()

	findString := func(name string) *cli.StringFlag {
		for _, flag := range flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
				return f
			}
		}
		return nil
	}

	t.Run("db is required", func(t *testing.T) {
		dbFlag := findString("db")
		require.NotNil(t, dbFlag)
		assert.True(t, dbFlag.Required)
		assert.Contains(t, dbFlag.Aliases, "d")
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		hostFlag := findString("embedding-host")
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("embedding-model has default value", func(t *testing.T) {
		modelFlag := findString("embedding-model")
		require.NotNil(t, modelFlag)
		assert.Equal(t, "embeddinggemma", modelFlag.Value)
	})

	t.Run("suggester-host defaults to empty", func(t *testing.T) {
		hostFlag := findString("suggester-host")
		require.NotNil(t, hostFlag)
		assert.Empty(t, hostFlag.Value)
	})
}

func TestIngestCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "recipefinder",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags:  databaseFlags(),
			},
		},
	}

	t.Run("missing db flag fails", func(t *testing.T) {
		args := []string{"recipefinder", "ingest", "recipes.json"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("missing file argument fails", func(t *testing.T) {
		args := []string{"recipefinder", "ingest", "--db", t.TempDir()}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JSON file")
	})
}

func TestLoadRawRecipes(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "recipes.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("array of recipes", func(t *testing.T) {
		raws, err := loadRawRecipes(writeFile(t, `[
			{"title": "Pancakes", "ingredients": ["2 cups flour"], "instructions": ["Mix."]},
			{"title": "Omelette", "ingredients": ["3 eggs"], "instructions": ["Whisk."]}
		]`))
		require.NoError(t, err)
		require.Len(t, raws, 2)
		assert.Equal(t, "Pancakes", raws[0].Title)
		assert.Equal(t, "Omelette", raws[1].Title)
	})

	t.Run("single recipe object", func(t *testing.T) {
		raws, err := loadRawRecipes(writeFile(t, `{
			"title": "Pancakes",
			"ingredients": ["2 cups flour", "1 cup milk"],
			"instructions": ["Mix.", "Fry."],
			"cuisine": "American",
			"tags": ["breakfast"]
		}`))
		require.NoError(t, err)
		require.Len(t, raws, 1)
		assert.Equal(t, "Pancakes", raws[0].Title)
		assert.Equal(t, []string{"2 cups flour", "1 cup milk"}, raws[0].Ingredients)
		assert.Equal(t, "American", raws[0].Cuisine)
	})

	t.Run("leading whitespace before array", func(t *testing.T) {
		raws, err := loadRawRecipes(writeFile(t, "\n\t [{\"title\": \"Toast\", \"ingredients\": [\"bread\"], \"instructions\": [\"Toast it.\"]}]"))
		require.NoError(t, err)
		require.Len(t, raws, 1)
		assert.Equal(t, "Toast", raws[0].Title)
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		_, err := loadRawRecipes(writeFile(t, `{"title": `))
		require.Error(t, err)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := loadRawRecipes(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})

	t.Run("round trips raw recipe fields", func(t *testing.T) {
		original := &core.RawRecipe{
			Title:        "Chicken Curry",
			Ingredients:  []string{"1 lb chicken", "2 tbsp curry powder"},
			Instructions: []string{"Brown the chicken.", "Add curry powder and simmer."},
			CookingTime:  40,
			Servings:     4,
			Cuisine:      "Indian",
		}
		data, err := json.Marshal(original)
		require.NoError(t, err)

		raws, err := loadRawRecipes(writeFile(t, string(data)))
		require.NoError(t, err)
		require.Len(t, raws, 1)
		assert.Equal(t, original, raws[0])
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newApp()
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}
		err := app.Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}
