// Package seed holds the default restaurant menu and loads it into a store.
package seed

import (
	"context"
	"fmt"

	"github.com/tastybyte/orderbot/internal/domain"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
)

// Menu returns the default menu. Each call returns a fresh copy.
func Menu() []domain.MenuItem {
	return []domain.MenuItem{
		{
			ItemID:      "pizza_chicken_001",
			Name:        "Chicken Pizza",
			Category:    "Pizza",
			Price:       500,
			Description: "Delicious chicken pizza with cheese and vegetables",
			Available:   true,
			Ingredients: []string{"chicken", "cheese", "tomato sauce", "bell peppers", "onions"},
			Sizes:       []string{"Small", "Medium", "Large"},
			Vegetarian:  false,
			Spicy:       false,
		},
		{
			ItemID:      "pizza_margherita_002",
			Name:        "Margherita Pizza",
			Category:    "Pizza",
			Price:       400,
			Description: "Classic margherita with fresh mozzarella and basil",
			Available:   true,
			Ingredients: []string{"mozzarella", "tomato sauce", "basil", "olive oil"},
			Sizes:       []string{"Small", "Medium", "Large"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "pizza_pepperoni_003",
			Name:        "Pepperoni Pizza",
			Category:    "Pizza",
			Price:       550,
			Description: "Spicy pepperoni pizza with extra cheese",
			Available:   true,
			Ingredients: []string{"pepperoni", "cheese", "tomato sauce"},
			Sizes:       []string{"Small", "Medium", "Large"},
			Vegetarian:  false,
			Spicy:       true,
		},
		{
			ItemID:      "burger_chicken_001",
			Name:        "Chicken Burger",
			Category:    "Burger",
			Price:       300,
			Description: "Grilled chicken burger with lettuce and mayo",
			Available:   true,
			Ingredients: []string{"chicken breast", "lettuce", "tomato", "mayonnaise", "bun"},
			Sizes:       []string{"Regular", "Large"},
			Vegetarian:  false,
			Spicy:       false,
		},
		{
			ItemID:      "burger_beef_002",
			Name:        "Beef Burger",
			Category:    "Burger",
			Price:       350,
			Description: "Juicy beef burger with cheese and pickles",
			Available:   true,
			Ingredients: []string{"beef patty", "cheese", "lettuce", "pickles", "ketchup", "bun"},
			Sizes:       []string{"Regular", "Large"},
			Vegetarian:  false,
			Spicy:       false,
		},
		{
			ItemID:      "burger_fish_003",
			Name:        "Fish Burger",
			Category:    "Burger",
			Price:       280,
			Description: "Crispy fish fillet burger with tartar sauce",
			Available:   true,
			Ingredients: []string{"fish fillet", "lettuce", "tartar sauce", "bun"},
			Sizes:       []string{"Regular"},
			Vegetarian:  false,
			Spicy:       false,
		},
		{
			ItemID:      "burger_veggie_004",
			Name:        "Veggie Burger",
			Category:    "Burger",
			Price:       250,
			Description: "Healthy vegetable burger with herbs",
			Available:   true,
			Ingredients: []string{"vegetable patty", "lettuce", "tomato", "cucumber", "mayo", "bun"},
			Sizes:       []string{"Regular"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "drink_coke_001",
			Name:        "Coke",
			Category:    "Drinks",
			Price:       100,
			Description: "Chilled Coca-Cola",
			Available:   true,
			Ingredients: []string{"cola"},
			Sizes:       []string{"Can", "Bottle", "Large"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "drink_pepsi_002",
			Name:        "Pepsi",
			Category:    "Drinks",
			Price:       100,
			Description: "Chilled Pepsi Cola",
			Available:   true,
			Ingredients: []string{"cola"},
			Sizes:       []string{"Can", "Bottle", "Large"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "drink_tea_003",
			Name:        "Hot Tea",
			Category:    "Drinks",
			Price:       50,
			Description: "Traditional hot tea",
			Available:   true,
			Ingredients: []string{"tea leaves", "water", "sugar", "milk"},
			Sizes:       []string{"Cup", "Large Cup"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "drink_coffee_004",
			Name:        "Coffee",
			Category:    "Drinks",
			Price:       80,
			Description: "Fresh brewed coffee",
			Available:   true,
			Ingredients: []string{"coffee beans", "water", "milk", "sugar"},
			Sizes:       []string{"Cup", "Large Cup"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "drink_juice_005",
			Name:        "Orange Juice",
			Category:    "Drinks",
			Price:       120,
			Description: "Fresh orange juice",
			Available:   true,
			Ingredients: []string{"oranges"},
			Sizes:       []string{"Glass", "Large Glass"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "side_fries_001",
			Name:        "French Fries",
			Category:    "Sides",
			Price:       150,
			Description: "Crispy golden french fries",
			Available:   true,
			Ingredients: []string{"potatoes", "oil", "salt"},
			Sizes:       []string{"Regular", "Large"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "side_wings_002",
			Name:        "Chicken Wings",
			Category:    "Sides",
			Price:       200,
			Description: "Spicy chicken wings with sauce",
			Available:   true,
			Ingredients: []string{"chicken wings", "spicy sauce", "herbs"},
			Sizes:       []string{"6 pieces", "12 pieces"},
			Vegetarian:  false,
			Spicy:       true,
		},
		{
			ItemID:      "side_samosa_003",
			Name:        "Samosa",
			Category:    "Sides",
			Price:       30,
			Description: "Crispy fried samosa with vegetables",
			Available:   true,
			Ingredients: []string{"flour", "potatoes", "peas", "spices"},
			Sizes:       []string{"1 piece"},
			Vegetarian:  true,
			Spicy:       true,
		},
		{
			ItemID:      "pak_biryani_001",
			Name:        "Chicken Biryani",
			Category:    "Pakistani",
			Price:       400,
			Description: "Aromatic chicken biryani with basmati rice",
			Available:   true,
			Ingredients: []string{"chicken", "basmati rice", "spices", "yogurt", "onions"},
			Sizes:       []string{"Regular", "Family"},
			Vegetarian:  false,
			Spicy:       true,
		},
		{
			ItemID:      "pak_karahi_002",
			Name:        "Chicken Karahi",
			Category:    "Pakistani",
			Price:       450,
			Description: "Traditional chicken karahi with fresh tomatoes",
			Available:   true,
			Ingredients: []string{"chicken", "tomatoes", "ginger", "garlic", "spices"},
			Sizes:       []string{"Regular", "Large"},
			Vegetarian:  false,
			Spicy:       true,
		},
		{
			ItemID:      "dessert_ice_cream_001",
			Name:        "Ice Cream",
			Category:    "Desserts",
			Price:       120,
			Description: "Vanilla ice cream scoop",
			Available:   true,
			Ingredients: []string{"milk", "cream", "vanilla", "sugar"},
			Sizes:       []string{"1 scoop", "2 scoops", "3 scoops"},
			Vegetarian:  true,
			Spicy:       false,
		},
		{
			ItemID:      "dessert_cake_002",
			Name:        "Chocolate Cake",
			Category:    "Desserts",
			Price:       180,
			Description: "Rich chocolate cake slice",
			Available:   true,
			Ingredients: []string{"flour", "chocolate", "eggs", "butter", "sugar"},
			Sizes:       []string{"Slice", "Large Slice"},
			Vegetarian:  true,
			Spicy:       false,
		},
	}
}

// MenuNames returns the names of the default menu in order
func MenuNames() []string {
	return domain.MenuNames(Menu())
}

// Load inserts or replaces every default menu item and returns how many were written
func Load(ctx context.Context, repo domain.MenuRepository, logger logging.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	count := 0
	for _, item := range Menu() {
		if err := repo.SaveMenuItem(ctx, item); err != nil {
			return count, fmt.Errorf("seed %s: %w", item.ItemID, err)
		}
		logger.Debug("menu item seeded", map[string]interface{}{
			"item_id": item.ItemID,
			"name":    item.Name,
		})
		count++
	}

	logger.Info("menu seeded", map[string]interface{}{"items": count})
	return count, nil
}
