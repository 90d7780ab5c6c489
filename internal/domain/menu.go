package domain

import "strings"

// MenuItem represents a dish or drink offered by the restaurant
type MenuItem struct {
	ItemID      string   `json:"item_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	Available   bool     `json:"available"`
	Ingredients []string `json:"ingredients,omitempty"`
	Sizes       []string `json:"size_available,omitempty"`
	Vegetarian  bool     `json:"vegetarian"`
	Spicy       bool     `json:"spicy"`
}

// UniqueMenu drops items whose name repeats an earlier item (case-insensitive).
// The first occurrence wins and the input order is preserved.
func UniqueMenu(items []MenuItem) []MenuItem {
	seen := make(map[string]bool, len(items))
	unique := make([]MenuItem, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}
	return unique
}

// MenuNames returns the display names of the given items in order
func MenuNames(items []MenuItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// FindMenuItem looks up an item by display name, ignoring case
func FindMenuItem(items []MenuItem, name string) (MenuItem, bool) {
	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return MenuItem{}, false
}
