package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	recipefinder "github.com/dswho2/rag-recipe-finder"
	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/ingestion"
)

var recipes = []*core.RawRecipe{
	{
		Title:        "Classic Chicken Fried Rice",
		Ingredients:  []string{"2 cups cooked rice", "1 lb chicken breast", "2 eggs", "1 cup frozen peas", "3 tbsp soy sauce", "2 cloves garlic"},
		Instructions: []string{"Dice the chicken and cook in a hot wok until golden.", "Push chicken aside and scramble the eggs.", "Add rice, peas, garlic and soy sauce.", "Stir-fry until everything is heated through."},
		CookingTime:  20,
		PrepTime:     10,
		Servings:     4,
		Cuisine:      "Chinese",
		Tags:         []string{"dinner", "quick"},
	},
	{
		Title:        "Spaghetti Aglio e Olio",
		Ingredients:  []string{"1 lb spaghetti", "6 cloves garlic", "1/2 cup olive oil", "1 tsp red pepper flakes", "1/4 cup parsley"},
		Instructions: []string{"Cook spaghetti in salted water until al dente.", "Gently fry sliced garlic in olive oil.", "Add pepper flakes, then toss with the pasta and parsley."},
		CookingTime:  15,
		PrepTime:     5,
		Servings:     4,
		Cuisine:      "Italian",
		Tags:         []string{"dinner", "vegetarian", "quick"},
	},
	{
		Title:        "Fluffy Buttermilk Pancakes",
		Ingredients:  []string{"2 cups flour", "2 cups buttermilk", "2 eggs", "2 tbsp sugar", "1 tsp baking soda", "2 tbsp melted butter"},
		Instructions: []string{"Whisk the dry ingredients together.", "Beat in buttermilk, eggs and butter until just combined.", "Cook ladlefuls on a buttered griddle until bubbles form, then flip."},
		CookingTime:  15,
		PrepTime:     10,
		Servings:     4,
		Cuisine:      "American",
		Tags:         []string{"breakfast"},
	},
	{
		Title:        "Red Lentil Dal",
		Ingredients:  []string{"1 cup red lentils", "1 onion", "2 tomatoes", "1 tbsp ginger", "1 tsp turmeric", "1 tsp cumin seeds", "2 tbsp ghee"},
		Instructions: []string{"Simmer lentils with turmeric until soft.", "Fry cumin seeds, onion, ginger and tomatoes in ghee.", "Stir the tempering into the lentils and season with salt."},
		CookingTime:  30,
		PrepTime:     10,
		Servings:     4,
		Cuisine:      "Indian",
		Tags:         []string{"dinner", "vegetarian", "vegan"},
	},
	{
		Title:        "Beef Tacos",
		Ingredients:  []string{"1 lb ground beef", "8 corn tortillas", "1 onion", "2 tsp chili powder", "1 tsp cumin", "1 cup shredded cheese", "1 lime"},
		Instructions: []string{"Brown the beef with onion and spices.", "Warm the tortillas in a dry pan.", "Fill tortillas with beef, cheese and a squeeze of lime."},
		CookingTime:  15,
		PrepTime:     10,
		Servings:     4,
		Cuisine:      "Mexican",
		Tags:         []string{"dinner", "quick"},
	},
	{
		Title:        "Miso Soup",
		Ingredients:  []string{"4 cups dashi stock", "3 tbsp miso paste", "1/2 block silken tofu", "2 green onions", "1 sheet wakame"},
		Instructions: []string{"Bring the dashi to a gentle simmer.", "Whisk in the miso off the heat.", "Add cubed tofu, wakame and sliced green onions."},
		CookingTime:  10,
		PrepTime:     5,
		Servings:     4,
		Cuisine:      "Japanese",
		Tags:         []string{"soup", "vegetarian", "quick"},
	},
	{
		Title:        "Greek Salad",
		Ingredients:  []string{"3 tomatoes", "1 cucumber", "1 red onion", "1 cup kalamata olives", "7 oz feta cheese", "1/4 cup olive oil", "1 tsp dried oregano"},
		Instructions: []string{"Chop the vegetables into chunky pieces.", "Toss with olives, olive oil and oregano.", "Top with a slab of feta."},
		PrepTime:     15,
		Servings:     4,
		Cuisine:      "Greek",
		Tags:         []string{"salad", "vegetarian", "no-cook"},
	},
	{
		Title:        "Roast Chicken with Root Vegetables",
		Ingredients:  []string{"1 whole chicken", "4 carrots", "3 parsnips", "1 lb potatoes", "4 sprigs thyme", "3 tbsp butter", "1 lemon"},
		Instructions: []string{"Rub the chicken with butter, salt and thyme.", "Scatter chopped vegetables around it in a roasting pan.", "Roast at 425F until the juices run clear, about 75 minutes.", "Rest before carving and squeeze lemon over the vegetables."},
		CookingTime:  75,
		PrepTime:     20,
		Servings:     6,
		Cuisine:      "French",
		Tags:         []string{"dinner", "roast"},
	},
	{
		Title:        "Shakshuka",
		Ingredients:  []string{"6 eggs", "1 can crushed tomatoes", "1 red bell pepper", "1 onion", "2 tsp paprika", "1 tsp cumin", "1/4 cup crumbled feta"},
		Instructions: []string{"Soften onion and pepper with the spices.", "Add tomatoes and simmer until thickened.", "Crack eggs into wells in the sauce and cover until just set.", "Finish with feta."},
		CookingTime:  25,
		PrepTime:     10,
		Servings:     3,
		Cuisine:      "Middle Eastern",
		Tags:         []string{"breakfast", "vegetarian"},
	},
	{
		Title:        "Pad Thai",
		Ingredients:  []string{"8 oz rice noodles", "1/2 lb shrimp", "2 eggs", "3 tbsp tamarind paste", "2 tbsp fish sauce", "1 cup bean sprouts", "1/4 cup crushed peanuts"},
		Instructions: []string{"Soak the noodles until pliable.", "Stir-fry shrimp, then push aside and scramble the eggs.", "Add noodles, tamarind and fish sauce and toss over high heat.", "Serve with bean sprouts and peanuts."},
		CookingTime:  15,
		PrepTime:     20,
		Servings:     3,
		Cuisine:      "Thai",
		Tags:         []string{"dinner", "noodles"},
	},
	{
		Title:        "Mushroom Risotto",
		Ingredients:  []string{"1 1/2 cups arborio rice", "1 lb mixed mushrooms", "5 cups vegetable stock", "1/2 cup white wine", "1 shallot", "1/2 cup parmesan", "3 tbsp butter"},
		Instructions: []string{"Brown the mushrooms and set aside.", "Toast the rice with shallot, then deglaze with wine.", "Add stock a ladle at a time, stirring until creamy.", "Fold in mushrooms, butter and parmesan."},
		CookingTime:  35,
		PrepTime:     10,
		Servings:     4,
		Cuisine:      "Italian",
		Tags:         []string{"dinner", "vegetarian"},
	},
	{
		Title:        "Banana Oat Smoothie",
		Ingredients:  []string{"2 bananas", "1/2 cup rolled oats", "1 cup milk", "1 tbsp honey", "1/2 tsp cinnamon", "1 cup ice"},
		Instructions: []string{"Blend everything until smooth.", "Pour over more ice if you like it thick."},
		PrepTime:     5,
		Servings:     2,
		Cuisine:      "American",
		Tags:         []string{"breakfast", "drink", "no-cook", "quick"},
	},
}

var (
	seedFileName = flag.String("src", "", "JSON file of seed recipes")
	dbPath       = flag.String("db", "./recipes_db", "path to the database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// recipesFromFile reads a JSON array of raw recipes from a file.
func recipesFromFile(filename string) ([]*core.RawRecipe, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var raws []*core.RawRecipe
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

func main() {
	db, err := recipefinder.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	coordinator, err := db.NewCoordinator()
	if err != nil {
		panic(err)
	}
	defer coordinator.Release()

	ctx := context.Background()

	// Determine source of seed data
	source := recipes
	if seedFileName != nil && *seedFileName != "" {
		source, err = recipesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	}

	outcomes := coordinator.IngestBatch(ctx, source, "seed")

	var stored, duplicates, failed int
	for _, outcome := range outcomes {
		switch outcome.Status {
		case ingestion.StatusStored:
			stored++
		case ingestion.StatusDuplicate:
			duplicates++
		case ingestion.StatusFailed:
			failed++
			slog.Error("seed recipe failed", "error", outcome.Err)
		}
	}

	slog.Info("seeding complete", "stored", stored, "duplicates", duplicates, "failed", failed)
}
