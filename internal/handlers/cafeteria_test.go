package handlers

import (
	"fmt"
	"testing"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMenu(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doRequest(r, "GET", "/api/cafeteria/menu", "", nil)
	require.Equal(t, 200, w.Code)

	menu := decodeBody(t, w)["menu"].(map[string]interface{})
	require.Contains(t, menu, "Coffee")
	coffee := menu["Coffee"].(map[string]interface{})
	assert.Equal(t, float64(30), coffee["price"])
	assert.Equal(t, "Beverages", coffee["category"])
}

func TestPlaceOrder(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "diner", false)

	w := doRequest(r, "POST", "/api/cafeteria/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Chicken Burger", "quantity": 2},
			{"name": "Coffee"},
		},
	})
	require.Equal(t, 201, w.Code)

	order := decodeBody(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "Pending", order["status"])
	// 2 burgers at 40 plus one coffee at 30, quantity defaults to 1
	assert.Equal(t, float64(110), order["total_amount"])

	items := order["items"].([]interface{})
	require.Len(t, items, 2)
	burger := items[0].(map[string]interface{})
	assert.Equal(t, float64(80), burger["subtotal"])
}

func TestPlaceOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "diner", false)

	w := doRequest(r, "POST", "/api/cafeteria/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{{"name": "Sushi"}},
	})
	assert.Equal(t, 400, w.Code)

	w = doRequest(r, "POST", "/api/cafeteria/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{{"name": "Coffee", "quantity": -1}},
	})
	assert.Equal(t, 400, w.Code)

	w = doRequest(r, "POST", "/api/cafeteria/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{},
	})
	assert.Equal(t, 400, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "rejected orders leave no rows behind")
}

func placeTestOrder(t *testing.T, r *gin.Engine, token string) uint {
	t.Helper()
	w := doRequest(r, "POST", "/api/cafeteria/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{{"name": "Tea", "quantity": 1}},
	})
	require.Equal(t, 201, w.Code)
	return uint(decodeBody(t, w)["order"].(map[string]interface{})["id"].(float64))
}

func TestGetUserOrders(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "diner", false)
	_, otherToken := createTestUser(t, db, "other", false)

	placeTestOrder(t, r, token)
	placeTestOrder(t, r, token)
	placeTestOrder(t, r, otherToken)

	w := doRequest(r, "GET", "/api/cafeteria/orders", token, nil)
	require.Equal(t, 200, w.Code)

	body := decodeBody(t, w)
	assert.Len(t, body["orders"].([]interface{}), 2)
	assert.Equal(t, float64(2), body["pagination"].(map[string]interface{})["total"])
}

func TestGetOrderOwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "diner", false)
	_, otherToken := createTestUser(t, db, "other", false)

	orderID := placeTestOrder(t, r, token)
	path := fmt.Sprintf("/api/cafeteria/orders/%d", orderID)

	w := doRequest(r, "GET", path, token, nil)
	assert.Equal(t, 200, w.Code)

	// Another user's order reads as not found, not forbidden
	w = doRequest(r, "GET", path, otherToken, nil)
	assert.Equal(t, 404, w.Code)
}

func TestCancelOrder(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "diner", false)
	_, admin := createTestUser(t, db, "admin", true)

	orderID := placeTestOrder(t, r, token)
	path := fmt.Sprintf("/api/cafeteria/orders/%d/cancel", orderID)

	w := doRequest(r, "PUT", path, token, nil)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "Cancelled", decodeBody(t, w)["order"].(map[string]interface{})["status"])

	// Once the kitchen has picked it up, cancellation is refused
	second := placeTestOrder(t, r, token)
	w = doRequest(r, "PUT", fmt.Sprintf("/api/cafeteria/admin/orders/%d/status", second), admin,
		map[string]interface{}{"status": "Preparing"})
	require.Equal(t, 200, w.Code)

	w = doRequest(r, "PUT", fmt.Sprintf("/api/cafeteria/orders/%d/cancel", second), token, nil)
	assert.Equal(t, 400, w.Code)
}

func TestAdminOrderRoutes(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "diner", false)
	_, admin := createTestUser(t, db, "admin", true)

	orderID := placeTestOrder(t, r, token)

	// Regular users are locked out of the admin surface
	w := doRequest(r, "GET", "/api/cafeteria/admin/orders", token, nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(r, "GET", "/api/cafeteria/admin/orders?status=Pending", admin, nil)
	require.Equal(t, 200, w.Code)
	assert.Len(t, decodeBody(t, w)["orders"].([]interface{}), 1)

	statusPath := fmt.Sprintf("/api/cafeteria/admin/orders/%d/status", orderID)
	w = doRequest(r, "PUT", statusPath, admin, map[string]interface{}{"status": "Ready"})
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "Ready", decodeBody(t, w)["order"].(map[string]interface{})["status"])

	w = doRequest(r, "PUT", statusPath, admin, map[string]interface{}{"status": "Burnt"})
	assert.Equal(t, 400, w.Code)

	w = doRequest(r, "GET", "/api/cafeteria/admin/orders?status=Pending", admin, nil)
	require.Equal(t, 200, w.Code)
	assert.Empty(t, decodeBody(t, w)["orders"])
}
