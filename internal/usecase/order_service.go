package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tastybyte/orderbot/internal/domain"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
	"github.com/tastybyte/orderbot/internal/infrastructure/metrics"
	"github.com/tastybyte/orderbot/internal/nlp"
)

// Package-level compiled regex patterns for performance
var (
	orderIDPattern = regexp.MustCompile(`(?i)ORD_\d{8}_\d{6}_[a-f0-9]{6}`)
)

// adminKeywords mark staff-only requests that customers may not issue through chat
var adminKeywords = []string{
	"mark", "change price", "update menu", "set price", "mark unavailable",
	"mark available", "update item", "delete item", "add item", "firestore",
}

// Canned replies
const (
	greetingReply = "Hello! Welcome to our restaurant. You can order food by saying something like " +
		"'I want 2 chicken pizzas and 1 coke' or ask to 'show menu' to see available items."
	helpReply = "I can help you with:\n" +
		"• Ordering food (e.g., 'I want 2 pizzas and 1 coke' or just '2 pizzas and coke')\n" +
		"• Viewing the menu (say 'show menu')\n" +
		"• Checking your orders (say 'what did I order' or 'my orders')\n" +
		"• Canceling orders (say 'cancel my order')\n\n" +
		"What would you like to do?"
	unknownReply = "I didn't quite understand that. I can help you with:\n" +
		"• Ordering food (e.g., 'I want 2 pizzas' or just '2 pizzas and coke')\n" +
		"• Viewing the menu (say 'show menu')\n" +
		"• Checking orders (say 'my orders')\n" +
		"• Canceling orders (say 'cancel order')\n\n" +
		"What would you like to do?"
	adminReply = "This action is restricted to staff/admin users. Please use the admin panel for menu management."
	noItemsReply = "I couldn't identify any menu items in your message. Could you please specify what you'd like to order? " +
		"For example: 'I want 2 chicken pizzas and 1 coke' or just '2 chicken pizzas and coke'. " +
		"You can also say 'show menu' to see available items."
	cancelFailedReply = "Failed to cancel order. Please try again or contact staff."
)

// Intents reported by the chat flow on top of the parser's own
const (
	IntentAdminBlocked        = "admin_blocked"
	IntentClarificationNeeded = "clarification_needed"
)

// recentOrdersLimit is how many orders a customer sees when asking for their orders
const recentOrdersLimit = 5

// DefaultListLimit caps order listings when the caller gives no limit
const DefaultListLimit = 50

// ChatRequest is one customer message
type ChatRequest struct {
	Message string           `json:"message"`
	User    *domain.Customer `json:"user,omitempty"`
}

// ChatResponse is the assistant's reply to a customer message
type ChatResponse struct {
	Success            bool                  `json:"success"`
	Intent             string                `json:"intent"`
	Response           string                `json:"response"`
	Menu               []domain.MenuItem     `json:"menu,omitempty"`
	Order              *domain.Order         `json:"order,omitempty"`
	Orders             []domain.OrderSummary `json:"orders,omitempty"`
	CancelledOrderID   string                `json:"cancelled_order_id,omitempty"`
	CancelledOrder     *domain.Order         `json:"cancelled_order,omitempty"`
	NeedsClarification bool                  `json:"needs_clarification,omitempty"`
	ClarificationType  string                `json:"clarification_type,omitempty"`
	Quantity           float64               `json:"quantity,omitempty"`
	AvailableOptions   []string              `json:"available_options,omitempty"`
	MenuDetails        []domain.MenuItem     `json:"menu_details,omitempty"`
	UnclearItems       []string              `json:"unclear_items,omitempty"`
}

// ChatError is a failed chat turn. Err is one of the domain sentinels and
// Message is the text shown to the customer.
type ChatError struct {
	Err          error
	Intent       string
	Message      string
	UnclearItems []string
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// OrderParser turns a message into a structured parse against the current menu
type OrderParser interface {
	Parse(ctx context.Context, text string, menuNames []string) nlp.ParseResult
}

// OrderService runs the ordering conversation on top of the parser and the stores
type OrderService struct {
	menu      domain.MenuRepository
	orders    domain.OrderRepository
	chats     domain.ChatRepository
	parser    OrderParser
	logger    logging.Logger
	now       func() time.Time
	newSuffix func() string
}

// NewOrderService creates a new order service with dependencies
func NewOrderService(
	menu domain.MenuRepository,
	orders domain.OrderRepository,
	chats domain.ChatRepository,
	parser OrderParser,
	logger logging.Logger,
) *OrderService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &OrderService{
		menu:      menu,
		orders:    orders,
		chats:     chats,
		parser:    parser,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newSuffix: randomSuffix,
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// IsAdminCommand reports whether text asks for a staff-only action
func IsAdminCommand(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range adminKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Menu returns the available menu with duplicate names removed
func (s *OrderService) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.menu.ListMenu(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		if item.Available {
			available = append(available, item)
		}
	}

	unique := domain.UniqueMenu(available)
	if removed := len(available) - len(unique); removed > 0 {
		s.logger.Warn("duplicate menu items removed", map[string]interface{}{"removed": removed})
	}
	return unique, nil
}

// MenuByCategory returns the available menu items of one category, ignoring case
func (s *OrderService) MenuByCategory(ctx context.Context, category string) ([]domain.MenuItem, error) {
	items, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.MenuItem, 0)
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Parse runs the parser against the current menu without side effects
func (s *OrderService) Parse(ctx context.Context, text string) (nlp.ParseResult, error) {
	menu, err := s.Menu(ctx)
	if err != nil {
		return nlp.ParseResult{}, err
	}
	return s.parse(ctx, text, domain.MenuNames(menu)), nil
}

func (s *OrderService) parse(ctx context.Context, text string, menuNames []string) nlp.ParseResult {
	start := time.Now()
	parsed := s.parser.Parse(ctx, text, menuNames)
	metrics.ObserveParse(string(parsed.Intent), parsed.Clarification(), time.Since(start))
	return parsed
}

// Chat answers one customer message.
// Flow: validate -> load menu -> parse -> dispatch on intent
func (s *OrderService) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, &ChatError{Err: domain.ErrInvalidRequest, Message: "Message is required"}
	}
	s.logger.Info("processing message", map[string]interface{}{"message": text})

	if IsAdminCommand(text) {
		return nil, &ChatError{Err: domain.ErrAdminCommand, Intent: IntentAdminBlocked, Message: adminReply}
	}

	menu, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}
	parsed := s.parse(ctx, text, domain.MenuNames(menu))

	switch {
	case parsed.Intent == nlp.IntentGreeting:
		return reply(parsed.Intent, greetingReply), nil
	case parsed.Intent == nlp.IntentHelp:
		return reply(parsed.Intent, helpReply), nil
	case parsed.Intent == nlp.IntentShowMenu:
		resp := reply(parsed.Intent, "Here's our menu:")
		resp.Menu = menu
		return resp, nil
	case parsed.Intent == nlp.IntentCancelOrder:
		return s.cancel(ctx, text)
	case parsed.Intent == nlp.IntentViewOrders:
		return s.recentOrders(ctx), nil
	case parsed.NeedsClarification:
		return clarify(parsed, menu), nil
	case parsed.Intent == nlp.IntentOrderFood:
		return s.placeOrder(ctx, text, req.User, parsed, menu)
	default:
		return reply(nlp.IntentUnknown, unknownReply), nil
	}
}

func reply(intent nlp.Intent, text string) *ChatResponse {
	return &ChatResponse{Success: true, Intent: string(intent), Response: text}
}

// cancel cancels the order named in text, or the most recent active order
func (s *OrderService) cancel(ctx context.Context, text string) (*ChatResponse, error) {
	intent := string(nlp.IntentCancelOrder)

	if match := orderIDPattern.FindString(text); match != "" {
		orderID := "ORD_" + strings.ToLower(match[len("ORD_"):])
		order, err := s.orders.GetOrder(ctx, orderID)
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, &ChatError{
				Err:     domain.ErrOrderNotFound,
				Intent:  intent,
				Message: fmt.Sprintf("Order %s not found. Please check the Order ID and try again.", orderID),
			}
		}
		if err != nil {
			return nil, s.cancelFailed(orderID, err)
		}
		if order.Status.IsTerminal() {
			return nil, &ChatError{
				Err:     domain.ErrOrderNotCancellable,
				Intent:  intent,
				Message: fmt.Sprintf("Order %s is already %s and cannot be cancelled.", orderID, order.Status),
			}
		}
		now := s.now()
		if err := s.orders.UpdateOrderStatus(ctx, orderID, domain.StatusCancelled, now); err != nil {
			return nil, s.cancelFailed(orderID, err)
		}

		resp := reply(nlp.IntentCancelOrder, fmt.Sprintf("Order %s has been successfully cancelled.", orderID))
		resp.CancelledOrderID = orderID
		s.logConversation(ctx, orderID, text, resp.Response, intent, nil, now)
		return resp, nil
	}

	active, err := s.orders.ListOrders(ctx, domain.OrderQuery{
		Limit:    1,
		Statuses: []domain.OrderStatus{domain.StatusPending, domain.StatusConfirmed},
	})
	if err != nil {
		return nil, s.cancelFailed("", err)
	}
	if len(active) == 0 {
		return nil, &ChatError{
			Err:     domain.ErrNoActiveOrder,
			Intent:  intent,
			Message: "You don't have any active orders to cancel. If you need help with a specific order, please provide the Order ID.",
		}
	}

	order := active[0]
	now := s.now()
	if err := s.orders.UpdateOrderStatus(ctx, order.OrderID, domain.StatusCancelled, now); err != nil {
		return nil, s.cancelFailed(order.OrderID, err)
	}
	order.Status = domain.StatusCancelled
	order.UpdatedAt = now

	resp := reply(nlp.IntentCancelOrder, fmt.Sprintf(
		"Your most recent order %s (PKR %s, %d items) has been cancelled.",
		order.OrderID, formatAmount(order.TotalPrice), len(order.Items),
	))
	resp.CancelledOrderID = order.OrderID
	resp.CancelledOrder = order
	s.logConversation(ctx, order.OrderID, text, resp.Response, intent, nil, now)
	return resp, nil
}

func (s *OrderService) cancelFailed(orderID string, err error) error {
	s.logger.WithError(err).Error("failed to cancel order", map[string]interface{}{"order_id": orderID})
	return &ChatError{
		Err:     fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err),
		Intent:  string(nlp.IntentCancelOrder),
		Message: cancelFailedReply,
	}
}

// recentOrders lists the latest orders. A store failure is answered politely
// instead of failing the turn.
func (s *OrderService) recentOrders(ctx context.Context) *ChatResponse {
	orders, err := s.orders.ListOrders(ctx, domain.OrderQuery{Limit: recentOrdersLimit})
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch orders", nil)
		return reply(nlp.IntentViewOrders, "I couldn't retrieve your orders right now. Please try again or contact staff.")
	}
	if len(orders) == 0 {
		return reply(nlp.IntentViewOrders, "You don't have any orders yet. Would you like to place an order?")
	}

	var b strings.Builder
	b.WriteString("Here are your recent orders:\n")
	summaries := make([]domain.OrderSummary, 0, len(orders))
	for _, order := range orders {
		sum := order.Summary()
		summaries = append(summaries, sum)
		fmt.Fprintf(&b, "\n• Order %s: PKR %s (%s) - %d items", sum.OrderID, formatAmount(sum.Total), sum.Status, sum.ItemsCount)
	}

	resp := reply(nlp.IntentViewOrders, b.String())
	resp.Orders = summaries
	return resp
}

// clarify asks the customer to resolve a generic category or unrecognised items
func clarify(parsed nlp.ParseResult, menu []domain.MenuItem) *ChatResponse {
	kind := parsed.Clarification()
	resp := &ChatResponse{
		Success:            true,
		Intent:             IntentClarificationNeeded,
		NeedsClarification: true,
		ClarificationType:  kind,
	}

	if kind == nlp.ClarificationUnclearItems {
		resp.UnclearItems = parsed.UnclearItems
		resp.Response = fmt.Sprintf("I couldn't identify these items: %s.\n\n", strings.Join(parsed.UnclearItems, ", ")) +
			"Could you please clarify? You can:\n" +
			"• Say 'show menu' to see available items\n" +
			"• Rephrase your order with correct item names"
		return resp
	}

	quantity := 1.0
	if parsed.PendingQuantity != nil {
		quantity = *parsed.PendingQuantity
	}

	details := make([]domain.MenuItem, 0, len(parsed.AvailableOptions))
	for _, item := range menu {
		for _, option := range parsed.AvailableOptions {
			if item.Name == option {
				details = append(details, item)
				break
			}
		}
	}

	var b strings.Builder
	plural := ""
	if quantity > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "You want %s %s%s. We have the following options:\n\n", formatAmount(quantity), kind, plural)
	for i, option := range details {
		fmt.Fprintf(&b, "%d. %s - PKR %s\n", i+1, option.Name, formatAmount(option.Price))
	}
	b.WriteString("\nWhich one would you like?")

	resp.Response = b.String()
	resp.Quantity = quantity
	resp.AvailableOptions = parsed.AvailableOptions
	resp.MenuDetails = details
	return resp
}

// placeOrder prices the parsed items, stores the order and logs the exchange.
// Resolved items are ordered even when other parts of the message were unclear.
func (s *OrderService) placeOrder(
	ctx context.Context,
	text string,
	user *domain.Customer,
	parsed nlp.ParseResult,
	menu []domain.MenuItem,
) (*ChatResponse, error) {
	unclear := append([]string{}, parsed.UnclearItems...)

	if len(parsed.Items) == 0 {
		msg := noItemsReply
		if len(unclear) > 0 {
			msg = fmt.Sprintf("I couldn't identify any menu items. Unclear items: %s. "+
				"Please say 'show menu' to see available items and try again.", strings.Join(unclear, ", "))
		}
		return nil, &ChatError{Err: domain.ErrNoItemsRecognized, Intent: string(nlp.IntentOrderFood), Message: msg, UnclearItems: unclear}
	}

	var (
		items    []domain.OrderItem
		total    float64
		notFound []string
	)
	for i, name := range parsed.Items {
		item, ok := domain.FindMenuItem(menu, name)
		if !ok {
			s.logger.Warn("menu item not found", map[string]interface{}{"item": name})
			notFound = append(notFound, name)
			continue
		}

		qty := parsed.Quantities[i]
		if qty != math.Trunc(qty) || qty < 1 {
			s.logger.Warn("fractional quantity rejected", map[string]interface{}{"item": name, "quantity": qty})
			unclear = append(unclear, formatAmount(qty)+" "+name)
			continue
		}

		line := domain.OrderItem{
			ItemID:     item.ItemID,
			Name:       item.Name,
			Quantity:   int(qty),
			UnitPrice:  item.Price,
			TotalPrice: item.Price * qty,
		}
		items = append(items, line)
		total += line.TotalPrice
	}

	if len(items) == 0 {
		msg := "I couldn't match any items to our menu."
		if len(unclear) > 0 {
			msg += fmt.Sprintf(" Unclear items: %s.", strings.Join(unclear, ", "))
		}
		msg += " Please check the menu (say 'show menu') and try again."
		return nil, &ChatError{Err: domain.ErrNoItemsRecognized, Intent: string(nlp.IntentOrderFood), Message: msg, UnclearItems: unclear}
	}

	customer := domain.Customer{Name: "Guest"}
	if user != nil && user.Name != "" {
		customer = *user
	}

	now := s.now()
	order := &domain.Order{
		OrderID:         domain.NewOrderID(now, s.newSuffix()),
		User:            customer,
		Items:           items,
		TotalPrice:      total,
		Status:          domain.StatusPending,
		OriginalMessage: text,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(unclear) > 0 {
		order.UnclearItems = unclear
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.logger.WithError(err).Error("failed to save order", map[string]interface{}{"order_id": order.OrderID})
		return nil, err
	}
	metrics.OrdersPlaced.Inc()

	var b strings.Builder
	fmt.Fprintf(&b, "Order confirmed! Your order ID is %s.\n\nItems:\n", order.OrderID)
	for _, line := range items {
		fmt.Fprintf(&b, "• %dx %s - PKR %s\n", line.Quantity, line.Name, formatAmount(line.TotalPrice))
	}
	fmt.Fprintf(&b, "\nTotal: PKR %s", formatAmount(total))
	if len(unclear) > 0 {
		fmt.Fprintf(&b, "\n\nNote: I couldn't identify these items: %s. They were not included in your order.", strings.Join(unclear, ", "))
	}
	if len(notFound) > 0 {
		fmt.Fprintf(&b, "\n\nNote: Could not find: %s", strings.Join(notFound, ", "))
	}

	resp := reply(nlp.IntentOrderFood, b.String())
	resp.Order = order
	resp.UnclearItems = unclear
	s.logConversation(ctx, order.OrderID, text, resp.Response, string(parsed.Intent), parsed.Items, now)

	s.logger.Info("order placed", map[string]interface{}{
		"order_id": order.OrderID,
		"items":    len(items),
		"total":    total,
	})
	return resp, nil
}

// logConversation stores the user message and the reply. Failures are logged only.
func (s *OrderService) logConversation(
	ctx context.Context,
	orderID, userText, systemText, intent string,
	items []string,
	now time.Time,
) {
	entries := []domain.ChatLog{
		{
			ID:             uuid.NewString(),
			OrderID:        orderID,
			Sender:         domain.SenderUser,
			Message:        userText,
			Timestamp:      now,
			ParsedIntent:   intent,
			ExtractedItems: items,
		},
		{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Sender:    domain.SenderSystem,
			Message:   systemText,
			Timestamp: now,
		},
	}
	for _, entry := range entries {
		if err := s.chats.AppendChatLog(ctx, entry); err != nil {
			s.logger.WithError(err).Warn("failed to save chat log", map[string]interface{}{"order_id": orderID})
			return
		}
	}
}

// ListOrders returns orders newest first. status may be empty.
func (s *OrderService) ListOrders(ctx context.Context, limit int, status string) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := domain.OrderQuery{Limit: limit}
	if status != "" {
		st, err := domain.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		q.Statuses = []domain.OrderStatus{st}
	}
	return s.orders.ListOrders(ctx, q)
}

// GetOrder returns one order
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.orders.GetOrder(ctx, orderID)
}

// UpdateOrderStatus moves an order to a new status
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	if status == "" {
		return fmt.Errorf("%w: status is required", domain.ErrInvalidRequest)
	}
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return err
	}
	if err := s.orders.UpdateOrderStatus(ctx, orderID, st, s.now()); err != nil {
		return err
	}
	s.logger.Info("order status updated", map[string]interface{}{"order_id": orderID, "status": st})
	return nil
}

// ChatHistory returns the conversation stored for an order, oldest first
func (s *OrderService) ChatHistory(ctx context.Context, orderID string) ([]domain.ChatLog, error) {
	return s.chats.ChatHistory(ctx, orderID)
}

// formatAmount prints a price or quantity without trailing zeros, e.g. 500 or 0.5
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
