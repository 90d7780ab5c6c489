package nlp

// SubstitutionRule rewrites a whole word or phrase into its canonical form
type SubstitutionRule struct {
	From string
	To   string
}

// Common spelling mistakes, applied before aliases. Order is significant.
var defaultMistakes = []SubstitutionRule{
	{From: "piza", To: "pizza"},
	{From: "pizz", To: "pizza"},
	{From: "buger", To: "burger"},
	{From: "burgar", To: "burger"},
	{From: "cok", To: "coke"},
	{From: "coke", To: "coke"},
	{From: "coffe", To: "coffee"},
	{From: "cofffee", To: "coffee"},
	{From: "chiken", To: "chicken"},
	{From: "chikn", To: "chicken"},
	{From: "beryani", To: "biryani"},
	{From: "biriyani", To: "biryani"},
}

// Food aliases folded onto menu wording. Order is significant.
var defaultAliases = []SubstitutionRule{
	{From: "coca cola", To: "coke"},
	{From: "coca-cola", To: "coke"},
	{From: "cola", To: "coke"},
	{From: "pepsi cola", To: "pepsi"},
	{From: "french fry", To: "french fries"},
	{From: "fries", To: "french fries"},
	{From: "chips", To: "french fries"},
	{From: "tea", To: "hot tea"},
	{From: "chai", To: "hot tea"},
	{From: "biryani", To: "chicken biryani"},
	{From: "margherita", To: "margherita pizza"},
	{From: "pepperoni", To: "pepperoni pizza"},
	{From: "wings", To: "chicken wings"},
	{From: "fried chicken", To: "chicken wings"},
}

// quantityWord maps a counting word to the amount it stands for
type quantityWord struct {
	word  string
	value float64
}

// Checked in order; the first word present wins.
var defaultQuantityWords = []quantityWord{
	{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
	{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
	{"eleven", 11}, {"twelve", 12}, {"thirteen", 13}, {"fourteen", 14}, {"fifteen", 15},
	{"a", 1}, {"an", 1},
	{"couple", 2},
	{"few", 3}, {"several", 3},
	{"dozen", 12},
	{"half", 0.5},
	{"single", 1}, {"double", 2}, {"triple", 3},
}

// intentPatterns is the priority-ordered rule table. The first rule with a matching
// pattern and no matching exclusion decides the intent.
var intentPatterns = []struct {
	intent   Intent
	patterns []string
	exclude  []string
}{
	{
		intent: IntentViewOrders,
		patterns: []string{
			`\b(order history|past orders|previous orders|recent orders)\b`,
		},
	},
	{
		intent: IntentViewOrders,
		patterns: []string{
			`\b(what did i|show my|view my|check my|my)\b.*\b(order|orders)\b`,
			`\b(what.*order|which.*order)\b`,
			`^\b(my orders?|check orders?)\b`,
		},
		// "cancel my order" and "i don't want my order" mention "my order" but ask for a cancellation
		exclude: []string{
			`\b(cancel|remove|delete|stop)\b.*\border\b`,
			`\b(don't want|changed my mind)\b`,
		},
	},
	{
		intent: IntentCancelOrder,
		patterns: []string{
			`\b(cancel|remove|delete|stop)\b.*\b(order|my order)\b`,
			`\b(don't want|changed my mind)\b.*\b(order)?\b`,
			`^\b(cancel)\b`,
		},
		exclude: []string{
			`\border\b.*\bhistory\b`,
		},
	},
	{
		intent: IntentShowMenu,
		patterns: []string{
			`\b(menu|what do you have|what's available|show|list)\b`,
			`\b(see.*menu|menu.*please|display.*menu)\b`,
			`\b(what.*available|available.*items)\b`,
		},
	},
	{
		intent: IntentGreeting,
		patterns: []string{
			`^\b(hello|hi|hey|good morning|good afternoon|good evening)\b`,
			`^\b(how are you|what's up|greetings)\b`,
		},
	},
	{
		intent: IntentHelp,
		patterns: []string{
			`\b(help|how|what can|assist)\b`,
			`\b(support|guide|instructions)\b`,
		},
	},
}

// Explicit ordering phrases, checked only after the food heuristics fail
var orderFoodPatterns = []string{
	`\b(want|need|order|get|give me|i'll have|can i have)\b`,
	`\b(pizza|burger|chicken|food|drink|eat)\b`,
	`\b\d+\b.*\b(pizza|burger|chicken|coke|tea|coffee)\b`,
}

// orderingPhrases raise confidence when present anywhere in the text
var orderingPhrases = []string{"want", "need", "order", "get", "give me", "i'll have", "can i have"}

// GenericCategory is a food family that has several specific menu variants.
// A bare mention of the family needs a clarification unless a qualifier
// such as "chicken" sits right next to it.
type GenericCategory struct {
	Name       string   `json:"name"`
	Variants   []string `json:"variants"`
	Qualifiers []string `json:"qualifiers"`
}

// DefaultCategories returns the built-in generic categories in check order
func DefaultCategories() []GenericCategory {
	return []GenericCategory{
		{
			Name:       "pizza",
			Variants:   []string{"Chicken Pizza", "Margherita Pizza", "Pepperoni Pizza"},
			Qualifiers: []string{"chicken", "margherita", "pepperoni", "beef", "veggie", "vegetable", "cheese", "supreme"},
		},
		{
			Name:       "burger",
			Variants:   []string{"Chicken Burger", "Beef Burger", "Fish Burger", "Veggie Burger"},
			Qualifiers: []string{"chicken", "beef", "fish", "veggie", "vegetable", "cheese"},
		},
	}
}

// ZeroShotLabels is the fixed candidate label set offered to an external classifier
var ZeroShotLabels = []string{
	string(IntentOrderFood),
	string(IntentShowMenu),
	string(IntentCancelOrder),
	string(IntentViewOrders),
	string(IntentGreeting),
	string(IntentHelp),
}
