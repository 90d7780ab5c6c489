package nlp

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser(WithLogger(logging.NewTest(t)))
	ctx := context.Background()

	testCases := []struct {
		name               string
		text               string
		wantIntent         Intent
		wantItems          []string
		wantQuantities     []float64
		wantUnclear        []string
		wantClarification  string
		wantConfidence     float64
		wantNeedsClarified bool
	}{
		{
			name:           "full order",
			text:           "I want 2 chicken pizzas and 1 coke",
			wantIntent:     IntentOrderFood,
			wantItems:      []string{"Chicken Pizza", "Coke"},
			wantQuantities: []float64{2, 1},
			wantUnclear:    []string{},
			wantConfidence: 1.0,
		},
		{
			name:           "aggregated duplicates",
			text:           "2 coke and 1 coke and 3 coke",
			wantIntent:     IntentOrderFood,
			wantItems:      []string{"Coke"},
			wantQuantities: []float64{6},
			wantUnclear:    []string{},
			wantConfidence: 1.0,
		},
		{
			name:           "show menu",
			text:           "Show me the menu",
			wantIntent:     IntentShowMenu,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0.8,
		},
		{
			name:           "greeting",
			text:           "Hello there",
			wantIntent:     IntentGreeting,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0.8,
		},
		{
			name:           "cancel",
			text:           "Cancel my order",
			wantIntent:     IntentCancelOrder,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0.9,
		},
		{
			name:           "order history wins over a cancel verb",
			text:           "cancel my order history",
			wantIntent:     IntentViewOrders,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0.9,
		},
		{
			name:           "not wanting my order cancels it",
			text:           "i don't want my order",
			wantIntent:     IntentCancelOrder,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0.9,
		},
		{
			name:           "help",
			text:           "I need help",
			wantIntent:     IntentHelp,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0.9,
		},
		{
			name:           "partial success is not a clarification",
			text:           "2 chicken pizza and 1 unknown_item",
			wantIntent:     IntentOrderFood,
			wantItems:      []string{"Chicken Pizza"},
			wantQuantities: []float64{2},
			wantUnclear:    []string{"1 unknown_item"},
			wantConfidence: 1.0,
		},
		{
			name:               "nothing resolvable asks about the fragments",
			text:               "i want sushi",
			wantIntent:         IntentOrderFood,
			wantItems:          []string{},
			wantQuantities:     []float64{},
			wantUnclear:        []string{"i want sushi"},
			wantClarification:  ClarificationUnclearItems,
			wantNeedsClarified: true,
			wantConfidence:     0.4,
		},
		{
			name:           "empty",
			text:           "",
			wantIntent:     IntentUnknown,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0,
		},
		{
			name:           "whitespace only",
			text:           " \t\n ",
			wantIntent:     IntentUnknown,
			wantItems:      []string{},
			wantQuantities: []float64{},
			wantUnclear:    []string{},
			wantConfidence: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Parse(ctx, tc.text, testMenu)

			if got.Intent != tc.wantIntent {
				t.Errorf("Intent = %q, want %q", got.Intent, tc.wantIntent)
			}
			if !reflect.DeepEqual(got.Items, tc.wantItems) {
				t.Errorf("Items = %v, want %v", got.Items, tc.wantItems)
			}
			if !reflect.DeepEqual(got.Quantities, tc.wantQuantities) {
				t.Errorf("Quantities = %v, want %v", got.Quantities, tc.wantQuantities)
			}
			if !reflect.DeepEqual(got.UnclearItems, tc.wantUnclear) {
				t.Errorf("UnclearItems = %v, want %v", got.UnclearItems, tc.wantUnclear)
			}
			if got.NeedsClarification != tc.wantNeedsClarified {
				t.Errorf("NeedsClarification = %v, want %v", got.NeedsClarification, tc.wantNeedsClarified)
			}
			if got.Clarification() != tc.wantClarification {
				t.Errorf("Clarification() = %q, want %q", got.Clarification(), tc.wantClarification)
			}
			if got.Confidence != tc.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tc.wantConfidence)
			}
		})
	}
}

func TestParser_GenericClarification(t *testing.T) {
	p := NewParser()

	t.Run("misspelled category", func(t *testing.T) {
		got := p.Parse(context.Background(), "i want piza", testMenu)

		if got.Intent != IntentOrderFood {
			t.Errorf("Intent = %q, want %q", got.Intent, IntentOrderFood)
		}
		if !got.NeedsClarification || got.Clarification() != "pizza" {
			t.Fatalf("clarification = (%v, %q), want (true, \"pizza\")", got.NeedsClarification, got.Clarification())
		}
		wantOptions := []string{"Chicken Pizza", "Margherita Pizza", "Pepperoni Pizza"}
		if !reflect.DeepEqual(got.AvailableOptions, wantOptions) {
			t.Errorf("AvailableOptions = %v, want %v", got.AvailableOptions, wantOptions)
		}
		if len(got.Items) != 0 || len(got.Quantities) != 0 {
			t.Errorf("expected no items, got %v / %v", got.Items, got.Quantities)
		}
		if got.PendingQuantity == nil || *got.PendingQuantity != 1 {
			t.Errorf("PendingQuantity = %v, want 1", got.PendingQuantity)
		}
	})

	t.Run("quantity is carried", func(t *testing.T) {
		got := p.Parse(context.Background(), "i want 3 piza", testMenu)
		if got.PendingQuantity == nil || *got.PendingQuantity != 3 {
			t.Errorf("PendingQuantity = %v, want 3", got.PendingQuantity)
		}
	})
}

func TestParser_ResultJSON(t *testing.T) {
	p := NewParser()

	t.Run("plain result", func(t *testing.T) {
		data, err := json.Marshal(p.Parse(context.Background(), "Show me the menu", testMenu))
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		body := string(data)
		for _, want := range []string{
			`"intent":"show_menu"`,
			`"items":[]`,
			`"quantities":[]`,
			`"clarification_type":null`,
			`"available_options":[]`,
			`"unclear_items":[]`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("JSON %s missing %s", body, want)
			}
		}
		if strings.Contains(body, "pending_quantity") {
			t.Errorf("JSON %s should omit pending_quantity", body)
		}
	})

	t.Run("clarification result", func(t *testing.T) {
		data, err := json.Marshal(p.Parse(context.Background(), "i want piza", testMenu))
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		body := string(data)
		if !strings.Contains(body, `"clarification_type":"pizza"`) {
			t.Errorf("JSON %s missing clarification type", body)
		}
		if !strings.Contains(body, `"pending_quantity":1`) {
			t.Errorf("JSON %s missing pending quantity", body)
		}
	})
}

func TestParser_WithClassifier(t *testing.T) {
	stub := &stubZeroShot{label: "show_menu", score: 0.93}
	p := NewParser(WithClassifier(stub), WithClassifierTimeout(time.Second))

	got := p.Parse(context.Background(), "blah", testMenu)
	if got.Intent != IntentShowMenu {
		t.Errorf("Intent = %q, want %q", got.Intent, IntentShowMenu)
	}
}

func TestParser_WithoutNumberParser(t *testing.T) {
	p := NewParser(WithNumberParser(nil))

	got := p.Parse(context.Background(), "twenty two coke", testMenu)
	if !reflect.DeepEqual(got.Quantities, []float64{2}) {
		t.Errorf("Quantities = %v, want [2]", got.Quantities)
	}
}

func TestParser_Concurrent(t *testing.T) {
	p := NewParser()
	inputs := []string{
		"I want 2 chicken pizzas and 1 coke",
		"2 coke and 1 coke and 3 coke",
		"i want piza",
		"Show me the menu",
		"2 chicken pizza and 1 unknown_item",
	}

	want := make([]ParseResult, len(inputs))
	for i, in := range inputs {
		want[i] = p.Parse(context.Background(), in, testMenu)
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(inputs)*10)
	for n := 0; n < 10; n++ {
		for i, in := range inputs {
			wg.Add(1)
			go func(i int, in string) {
				defer wg.Done()
				got := p.Parse(context.Background(), in, testMenu)
				if !reflect.DeepEqual(got, want[i]) {
					errs <- in
				}
			}(i, in)
		}
	}
	wg.Wait()
	close(errs)

	for in := range errs {
		t.Errorf("concurrent Parse(%q) differs from sequential result", in)
	}
}
