package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"storeadmin/internal/memstore"
	"storeadmin/internal/models"
	"storeadmin/internal/services"
	"storeadmin/internal/session"
)

const (
	adminSecret = "let-me-in"
	cdnBase     = "https://cdn.example.com"
)

type harness struct {
	router  *gin.Engine
	orders  *memstore.Orders
	users   *memstore.Users
	objects *memstore.Objects
	carts   *memstore.Carts
	uploads *services.UploadService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := memstore.NewProducts()
	orders := memstore.NewOrders()
	users := memstore.NewUsers()
	objects := memstore.NewObjects(cdnBase)
	carts := memstore.NewCarts()

	uploads := services.NewUploadService(objects, time.Hour)
	h := &harness{orders: orders, users: users, objects: objects, carts: carts, uploads: uploads}
	h.router = NewRouter(Deps{
		Catalog:   services.NewCatalogService(products, objects),
		Uploads:   uploads,
		Orders:    services.NewOrderService(orders),
		Directory: services.NewDirectoryService(users, orders, carts),
		Auth:      services.NewAuthService(memstore.NewAdmins(), adminSecret).WithCost(bcrypt.MinCost),
		Sessions:  session.NewManager("router-secret", 24*time.Hour, false),
		Health:    func(context.Context) error { return nil },
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func (h *harness) signIn(t *testing.T, email, secret string) *http.Cookie {
	t.Helper()
	w := h.do(t, http.MethodPost, "/auth/register", gin.H{
		"name": "Owner", "email": email, "password": "hunter22", "adminSecret": secret,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": "hunter22"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func TestAdminRegistrationUnlocksDashboard(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "owner@example.com", adminSecret)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 86400, cookie.MaxAge)

	w := h.do(t, http.MethodGet, "/admin/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Products int64 `json:"products"`
		Users    int64 `json:"users"`
		Orders   struct {
			Total    int64            `json:"total"`
			ByStatus map[string]int64 `json:"byStatus"`
		} `json:"orders"`
	}
	decode(t, w, &stats)
	assert.Zero(t, stats.Orders.Total)
	assert.Contains(t, stats.Orders.ByStatus, models.StatusPending)

	w = h.do(t, http.MethodGet, "/login", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
}

func TestNonAdminIsRedirectedToLogin(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "staff@example.com", "")

	w := h.do(t, http.MethodGet, "/admin/dashboard", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = h.do(t, http.MethodGet, "/admin/dashboard", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = h.do(t, http.MethodGet, "/products", nil, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/products", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// follow walks redirects the way a browser would and returns the final
// response together with the visited paths.
func (h *harness) follow(t *testing.T, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, []string) {
	t.Helper()
	visited := []string{path}
	for hops := 0; hops < 5; hops++ {
		w := h.do(t, http.MethodGet, path, nil, cookie)
		if w.Code != http.StatusFound {
			return w, visited
		}
		path = w.Header().Get("Location")
		visited = append(visited, path)
	}
	t.Fatalf("redirect loop: %v", visited)
	return nil, visited
}

func TestNonAdminSessionSettlesOnLoginPage(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "staff@example.com", "")

	for _, start := range []string{"/", "/login", "/register", "/admin/dashboard", "/admin/orders"} {
		w, visited := h.follow(t, start, cookie)
		assert.Equal(t, http.StatusOK, w.Code, "chain from %s: %v", start, visited)
	}

	w, visited := h.follow(t, "/admin/dashboard", cookie)
	assert.Equal(t, []string{"/admin/dashboard", "/login"}, visited)
	var page map[string]string
	decode(t, w, &page)
	assert.Equal(t, "login", page["page"])
}

func TestEveryAdminPathIsGated(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/admin", "/admin/", "/admin/orders", "/admin/dashboard/products"} {
		w := h.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}

	cookie := h.signIn(t, "owner@example.com", adminSecret)
	w := h.do(t, http.MethodGet, "/admin/orders", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterAndLoginErrors(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "owner@example.com", adminSecret)

	w := h.do(t, http.MethodPost, "/auth/register", gin.H{"name": "Owner", "email": "owner@example.com", "password": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/auth/register", gin.H{"email": "new@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/auth/login", gin.H{"email": "owner@example.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = h.do(t, http.MethodPost, "/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Less(t, sessionCookie(t, w).MaxAge, 0)
}

func TestOrderStatusScenario(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "owner@example.com", adminSecret)
	order := h.orders.Put(models.Order{
		UserID:    primitive.NewObjectID(),
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	})

	w := h.do(t, http.MethodPatch, "/orders/status", gin.H{"orderId": order.ID.Hex(), "newStatus": "shipped"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Message string       `json:"message"`
		Order   models.Order `json:"order"`
	}
	decode(t, w, &updated)
	assert.Equal(t, models.StatusShipped, updated.Order.Status)

	w = h.do(t, http.MethodPatch, "/orders/status", gin.H{"orderId": order.ID.Hex(), "newStatus": "bogus"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPatch, "/orders/status", gin.H{"orderId": order.ID.Hex(), "newStatus": "DELIVERED"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be one of pending, shipped, delivered, cancelled")

	stored, err := h.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, stored.Status)

	w = h.do(t, http.MethodPatch, "/orders/status", gin.H{"orderId": primitive.NewObjectID().Hex(), "newStatus": "shipped"}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodDelete, "/orders?orderId="+order.ID.Hex(), nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodDelete, "/orders?orderId="+order.ID.Hex(), nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadScenario(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "owner@example.com", adminSecret)
	h.uploads.Now = func() time.Time { return time.UnixMilli(1700000000000) }

	w := h.do(t, http.MethodPost, "/upload", gin.H{"filename": "a.jpg", "contentType": "image/jpeg"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var slot struct {
		PresignedURL string `json:"presignedUrl"`
		Key          string `json:"key"`
		PublicURL    string `json:"publicUrl"`
	}
	decode(t, w, &slot)
	assert.Equal(t, "1700000000000-a.jpg", slot.Key)
	assert.Equal(t, cdnBase+"/1700000000000-a.jpg", slot.PublicURL)
	assert.NotEqual(t, slot.PublicURL, slot.PresignedURL)

	w = h.do(t, http.MethodPost, "/upload", gin.H{"filename": "a.exe", "contentType": "image/jpeg"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductLifecycleWithCascadeDelete(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "owner@example.com", adminSecret)
	h.objects.FailKeys["2-b.jpg"] = true

	w := h.do(t, http.MethodPost, "/products", gin.H{
		"title":  "Silk Saree",
		"price":  120,
		"tags":   []string{"silk"},
		"sizes":  []gin.H{{"size": "Free", "stock": 3}},
		"images": []string{cdnBase + "/1-a.jpg", cdnBase + "/2-b.jpg"},
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Product
	decode(t, w, &created)
	assert.Equal(t, 3, created.Stock)

	path := "/products/" + created.ID.Hex()

	w = h.do(t, http.MethodPut, path, gin.H{"discountedPrice": 99}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Product
	decode(t, w, &updated)
	assert.True(t, updated.IsOnSale)

	w = h.do(t, http.MethodPut, path, gin.H{"discountedPrice": 150}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "discountedPrice")

	w = h.do(t, http.MethodPut, path, gin.H{"price": 90, "onSale": true}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code, "the kept discount of 99 is no longer below the price")

	w = h.do(t, http.MethodPut, path, gin.H{"onSale": false, "price": 90}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &updated)
	assert.False(t, updated.IsOnSale)

	w = h.do(t, http.MethodPut, path, gin.H{"price": 120, "discountedPrice": 99}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodPatch, path+"/attributes", gin.H{
		"addTags":     []string{"festive"},
		"upsertSizes": []gin.H{{"size": "XL", "stock": 2}},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &updated)
	assert.Equal(t, models.StringList{"silk", "festive"}, updated.Tags)
	assert.Equal(t, 5, updated.Stock)

	w = h.do(t, http.MethodGet, "/products?search=SILK", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Product
	decode(t, w, &listed)
	assert.Len(t, listed, 1)

	w = h.do(t, http.MethodDelete, path, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, h.objects.AttemptCount())

	w = h.do(t, http.MethodGet, path, nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/products/not-an-id", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "owner@example.com", adminSecret)

	w := h.do(t, http.MethodPost, "/products", gin.H{"title": "x", "price": 0}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	decode(t, w, &body)
	assert.Equal(t, "validation failed", body.Error)
	assert.NotEmpty(t, body.Details)

	w = h.do(t, http.MethodPost, "/products", gin.H{
		"title": "x", "price": 10,
		"sizes": []gin.H{{"size": "M", "stock": 1}, {"size": "M", "stock": 2}},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserDirectoryAndOrdersForUser(t *testing.T) {
	h := newHarness(t)
	cookie := h.signIn(t, "owner@example.com", adminSecret)

	buyer := h.users.Put(models.User{Name: "Asha", Email: "asha@example.com",
		Addresses: []models.Address{{Street: "1 MG Road", City: "Pune"}}})
	idle := h.users.Put(models.User{Name: "Ravi", Email: "ravi@example.com"})
	for i := 0; i < 2; i++ {
		h.orders.Put(models.Order{
			UserID:    buyer.ID,
			Status:    models.StatusPending,
			Items:     []models.OrderItem{{Name: "Saree", Price: 10, Quantity: 1, Size: "Free"}},
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
	}

	w := h.do(t, http.MethodGet, "/users", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.UserSummary
	decode(t, w, &rows)
	counts := map[primitive.ObjectID]int64{}
	for _, row := range rows {
		counts[row.UserID] = row.OrderCount
	}
	assert.Equal(t, int64(2), counts[buyer.ID])
	assert.Equal(t, int64(0), counts[idle.ID])

	w = h.do(t, http.MethodGet, "/orders/for-user?userId="+buyer.ID.Hex(), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []models.OrderSummary
	decode(t, w, &summaries)
	assert.Len(t, summaries, 2)

	w = h.do(t, http.MethodGet, "/orders/for-user", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/users/"+idle.ID.Hex(), nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/users/"+buyer.ID.Hex()+"/orders", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var full []models.Order
	decode(t, w, &full)
	assert.Len(t, full, 2)

	h.carts.Put(models.Cart{UserID: buyer.ID, Items: []models.CartItem{{Name: "Saree", Price: 10, Quantity: 2, Size: "Free"}}, TotalAmount: 20})
	w = h.do(t, http.MethodGet, "/users/"+buyer.ID.Hex()+"/cart", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	decode(t, w, &cart)
	assert.Equal(t, 20.0, cart.TotalAmount)

	w = h.do(t, http.MethodGet, "/users/"+idle.ID.Hex()+"/cart", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)
}

func TestHomeAndHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	w = h.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORSAllowsConfiguredOriginWithCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Deps{
		Sessions:    session.NewManager("s", time.Hour, false),
		CORSOrigins: []string{"http://localhost:3000"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
