package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tastybyte/orderbot/internal/domain"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
	"github.com/tastybyte/orderbot/internal/usecase"
)

const (
	serviceName    = "Smart Restaurant Ordering Assistant"
	serviceVersion = "1.0.0"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	orders *usecase.OrderService
	health HealthChecker
	logger logging.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(orders *usecase.OrderService, health HealthChecker, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		orders: orders,
		health: health,
		logger: logger,
	}
}

type messageRequest struct {
	Message string           `json:"message"`
	User    *domain.Customer `json:"user"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// Index returns basic service information
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheck returns the health status of the API and its document store
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "connected"
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			h.logger.WithError(err).Error("database health check failed", nil)
			dbStatus = fmt.Sprintf("error: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMenu returns every available menu item
func (h *Handler) GetMenu(c *gin.Context) {
	menu, err := h.orders.Menu(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch menu", nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch menu",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"menu":    menu,
		"count":   len(menu),
	})
}

// GetMenuByCategory returns the available items of one category
func (h *Handler) GetMenuByCategory(c *gin.Context) {
	category := c.Param("category")
	menu, err := h.orders.MenuByCategory(c.Request.Context(), category)
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch menu by category", map[string]interface{}{"category": category})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch menu by category",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"category": category,
		"menu":     menu,
		"count":    len(menu),
	})
}

// PlaceOrder handles a free-text customer message
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Message is required",
		})
		return
	}

	resp, err := h.orders.Chat(c.Request.Context(), usecase.ChatRequest{Message: req.Message, User: req.User})
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Order != nil {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// writeChatError maps a failed chat turn onto the response the customer sees
func (h *Handler) writeChatError(c *gin.Context, err error) {
	status := statusFor(err)

	var chatErr *usecase.ChatError
	if errors.As(err, &chatErr) {
		body := gin.H{
			"success":  false,
			"error":    chatErr.Message,
			"response": chatErr.Message,
		}
		if chatErr.Intent != "" {
			body["intent"] = chatErr.Intent
		}
		if len(chatErr.UnclearItems) > 0 {
			body["unclear_items"] = chatErr.UnclearItems
		}
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("chat turn failed", nil)
		}
		c.JSON(status, body)
		return
	}

	h.logger.WithError(err).Error("failed to process order", nil)
	c.JSON(status, gin.H{
		"success": false,
		"error":   "Failed to process order",
		"message": err.Error(),
	})
}

// ParseMessage runs the parser only, without placing an order
func (h *Handler) ParseMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Message is required",
		})
		return
	}

	result, err := h.orders.Parse(c.Request.Context(), req.Message)
	if err != nil {
		h.logger.WithError(err).Error("failed to parse message", nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to parse message",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"parsed":  result,
	})
}

// ListOrders returns orders newest first, optionally filtered by status
func (h *Handler) ListOrders(c *gin.Context) {
	limit := usecase.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), limit, c.Query("status"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   invalidStatusMessage(),
			})
			return
		}
		h.logger.WithError(err).Error("failed to fetch orders", nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

// GetOrder returns a single order
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Order not found",
			})
			return
		}
		h.logger.WithError(err).Error("failed to fetch order", map[string]interface{}{"order_id": c.Param("id")})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// UpdateOrderStatus moves an order to a new status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Status is required",
		})
		return
	}

	err := h.orders.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Order %s status updated to %s", orderID, req.Status),
		})
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   invalidStatusMessage(),
		})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Order not found",
		})
	default:
		h.logger.WithError(err).Error("failed to update order status", map[string]interface{}{"order_id": orderID})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update order status",
		})
	}
}

// GetChatHistory returns the conversation stored for an order
func (h *Handler) GetChatHistory(c *gin.Context) {
	orderID := c.Param("orderId")

	history, err := h.orders.ChatHistory(c.Request.Context(), orderID)
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch chat history", map[string]interface{}{"order_id": orderID})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch chat history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"order_id":     orderID,
		"chat_history": history,
		"count":        len(history),
	})
}

// NotFound answers unknown routes
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   "Endpoint not found",
		"message": "The requested URL was not found on this server.",
	})
}

func invalidStatusMessage() string {
	return fmt.Sprintf("Invalid status. Valid statuses: %v", domain.OrderStatuses)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAdminCommand):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrNoActiveOrder),
		errors.Is(err, domain.ErrMenuItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrNoItemsRecognized),
		errors.Is(err, domain.ErrOrderNotCancellable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
