package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/tastybyte/orderbot/config"
	"github.com/tastybyte/orderbot/internal/domain"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
	"github.com/tastybyte/orderbot/internal/infrastructure/store"
	"github.com/tastybyte/orderbot/internal/nlp"
	"github.com/tastybyte/orderbot/internal/seed"
	"github.com/tastybyte/orderbot/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	// Run tests
	exitCode := m.Run()

	// Exit with the test result code
	os.Exit(exitCode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8000",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Store: config.StoreConfig{Type: "memory"},
	}
}

// setupTestRouter creates a test router backed by a seeded memory store
func setupTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	if _, err := seed.Load(context.Background(), s, nil); err != nil {
		t.Fatalf("seed.Load() error = %v", err)
	}
	return routerFor(t, s), s
}

func routerFor(t *testing.T, s domain.Store) *gin.Engine {
	t.Helper()
	logger := logging.NewTest(t)
	svc := usecase.NewOrderService(s, s, s, nlp.NewParser(nlp.WithLogger(logger)), logger)
	return SetupRouter(testConfig(), NewHandler(svc, s, logger), logger)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
	}
	return w, response
}

// TestHealthEndpoints tests the service information and health endpoints
func TestHealthEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("index", func(t *testing.T) {
		w, response := doJSON(t, router, "GET", "/", "")
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["service"] != serviceName {
			t.Errorf("service = %v, want %s", response["service"], serviceName)
		}
	})

	t.Run("health reports the database", func(t *testing.T) {
		w, response := doJSON(t, router, "GET", "/health", "")
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["database"] != "connected" {
			t.Errorf("database = %v, want connected", response["database"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w, _ := doJSON(t, router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("metrics", func(t *testing.T) {
		w, _ := doJSON(t, router, "GET", "/metrics", "")
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), "orderbot_http_requests_total") {
			t.Error("metrics output does not contain orderbot_http_requests_total")
		}
	})
}

// TestMenuEndpoints tests menu listing
func TestMenuEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	w, response := doJSON(t, router, "GET", "/api/v1/menu", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if response["count"] != float64(19) {
		t.Errorf("count = %v, want 19", response["count"])
	}

	w, response = doJSON(t, router, "GET", "/api/v1/menu/Drinks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if response["category"] != "Drinks" {
		t.Errorf("category = %v, want Drinks", response["category"])
	}
	if response["count"] != float64(5) {
		t.Errorf("count = %v, want 5", response["count"])
	}
}

// TestOrderEndpoint tests the conversational order endpoint
func TestOrderEndpoint(t *testing.T) {
	t.Run("places an order", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w, response := doJSON(t, router, "POST", "/api/v1/order", `{"message":"2 coke and 1 samosa","user":{"name":"Fatima Khan"}}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("Status = %d, want %d (body %s)", w.Code, http.StatusCreated, w.Body.String())
		}
		if response["success"] != true {
			t.Errorf("success = %v, want true", response["success"])
		}
		order, ok := response["order"].(map[string]interface{})
		if !ok {
			t.Fatalf("order missing: %v", response)
		}
		if order["total_price"] != float64(230) {
			t.Errorf("total_price = %v, want 230", order["total_price"])
		}
		if order["status"] != "Pending" {
			t.Errorf("status = %v, want Pending", order["status"])
		}
		orderID, _ := order["order_id"].(string)
		if !strings.HasPrefix(orderID, "ORD_") {
			t.Errorf("order_id = %q, want ORD_ prefix", orderID)
		}

		w, response = doJSON(t, router, "GET", "/api/v1/chat/"+orderID, "")
		if w.Code != http.StatusOK {
			t.Fatalf("chat Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["count"] != float64(2) {
			t.Errorf("chat count = %v, want 2", response["count"])
		}
	})

	t.Run("conversation replies use 200", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w, response := doJSON(t, router, "POST", "/api/v1/order", `{"message":"Hello there"}`)
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["intent"] != "greeting" {
			t.Errorf("intent = %v, want greeting", response["intent"])
		}
	})

	t.Run("status codes for failures", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		tests := []struct {
			name       string
			body       string
			wantStatus int
		}{
			{"empty message", `{"message":"  "}`, http.StatusBadRequest},
			{"malformed json", `{"message":`, http.StatusBadRequest},
			{"admin command", `{"message":"mark coke unavailable"}`, http.StatusForbidden},
			{"no active order", `{"message":"Cancel my order"}`, http.StatusNotFound},
			{"unknown order id", `{"message":"cancel order ORD_20250101_000000_abcdef"}`, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w, response := doJSON(t, router, "POST", "/api/v1/order", tt.body)
				if w.Code != tt.wantStatus {
					t.Errorf("Status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
				}
				if response["success"] != false {
					t.Errorf("success = %v, want false", response["success"])
				}
			})
		}
	})

	t.Run("cancel flow", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		_, response := doJSON(t, router, "POST", "/api/v1/order", `{"message":"1 coffee"}`)
		order := response["order"].(map[string]interface{})
		orderID := order["order_id"].(string)

		w, response := doJSON(t, router, "POST", "/api/v1/order", `{"message":"cancel order `+orderID+`"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["cancelled_order_id"] != orderID {
			t.Errorf("cancelled_order_id = %v, want %s", response["cancelled_order_id"], orderID)
		}

		w, _ = doJSON(t, router, "POST", "/api/v1/order", `{"message":"cancel order `+orderID+`"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("second cancel Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestParseEndpoint tests the parser-only endpoint
func TestParseEndpoint(t *testing.T) {
	router, s := setupTestRouter(t)

	w, response := doJSON(t, router, "POST", "/api/v1/parse", `{"message":"I want 2 chicken pizzas and 1 coke"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	parsed, ok := response["parsed"].(map[string]interface{})
	if !ok {
		t.Fatalf("parsed missing: %v", response)
	}
	if parsed["intent"] != "order_food" {
		t.Errorf("intent = %v, want order_food", parsed["intent"])
	}
	if s.Size() != 0 {
		t.Errorf("store holds %d orders, want 0", s.Size())
	}

	w, _ = doJSON(t, router, "POST", "/api/v1/parse", `{"message":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty message Status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestOrderManagementEndpoints tests listing, fetching and updating orders
func TestOrderManagementEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	_, response := doJSON(t, router, "POST", "/api/v1/order", `{"message":"3 samosa"}`)
	orderID := response["order"].(map[string]interface{})["order_id"].(string)

	t.Run("get order", func(t *testing.T) {
		w, response := doJSON(t, router, "GET", "/api/v1/orders/"+orderID, "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		order := response["order"].(map[string]interface{})
		if order["total_price"] != float64(90) {
			t.Errorf("total_price = %v, want 90", order["total_price"])
		}

		w, _ = doJSON(t, router, "GET", "/api/v1/orders/ORD_missing", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("missing order Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("update status", func(t *testing.T) {
		tests := []struct {
			name       string
			id         string
			body       string
			wantStatus int
		}{
			{"valid", orderID, `{"status":"Preparing"}`, http.StatusOK},
			{"missing status", orderID, `{}`, http.StatusBadRequest},
			{"invalid status", orderID, `{"status":"Lost"}`, http.StatusBadRequest},
			{"unknown order", "ORD_missing", `{"status":"Ready"}`, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w, _ := doJSON(t, router, "PUT", "/api/v1/orders/"+tt.id+"/status", tt.body)
				if w.Code != tt.wantStatus {
					t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
				}
			})
		}
	})

	t.Run("list orders", func(t *testing.T) {
		w, response := doJSON(t, router, "GET", "/api/v1/orders?status=Preparing&limit=10", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if response["count"] != float64(1) {
			t.Errorf("count = %v, want 1", response["count"])
		}

		w, _ = doJSON(t, router, "GET", "/api/v1/orders?status=Lost", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("invalid status Status = %d, want %d", w.Code, http.StatusBadRequest)
		}

		w, _ = doJSON(t, router, "GET", "/api/v1/orders?limit=abc", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("invalid limit Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestStoreFailure tests that store outages surface as 500
func TestStoreFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := store.NewRedisStore("redis://"+mr.Addr()+"/0", "test:")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	mr.Close()
	router := routerFor(t, s)

	w, response := doJSON(t, router, "GET", "/api/v1/menu", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("menu Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if response["success"] != false {
		t.Errorf("success = %v, want false", response["success"])
	}

	w, _ = doJSON(t, router, "POST", "/api/v1/order", `{"message":"2 coke"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("order Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	_, response = doJSON(t, router, "GET", "/health", "")
	if db, _ := response["database"].(string); !strings.HasPrefix(db, "error:") {
		t.Errorf("database = %q, want error status", db)
	}
}

// TestUnknownRoutes tests API versioning and the JSON 404
func TestUnknownRoutes(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, path := range []string{"/api/menu", "/menu", "/api/v2/menu"} {
		w, response := doJSON(t, router, "GET", path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Path %s: Status = %d, want %d", path, w.Code, http.StatusNotFound)
		}
		if response["error"] != "Endpoint not found" {
			t.Errorf("Path %s: error = %v, want Endpoint not found", path, response["error"])
		}
	}
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/menu", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8501" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:8501")
	}
}
