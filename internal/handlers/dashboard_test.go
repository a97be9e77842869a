package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	driver, driverToken := createTestUser(t, db, "driver", false)
	_, token := createTestUser(t, db, "student", false)

	createTestIssue(t, r, token, "Electrical", "High")
	placeTestOrder(t, r, token)
	submitTestFeedback(t, r, token, "Cafeteria", 4)
	createTestItem(t, r, token, "lost", "Wallet")

	ride := createTestRide(t, db, driver.ID, 3, futureTime(24))
	require.Equal(t, 201, doRequest(r, "POST", bookPath(ride.ID), token, nil).Code)

	w := doRequest(r, "GET", "/api/dashboard/stats", token, nil)
	require.Equal(t, 200, w.Code)

	stats := decodeBody(t, w)["user_stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_issues"])
	assert.Equal(t, float64(1), stats["pending_issues"])
	assert.Equal(t, float64(0), stats["resolved_issues"])
	assert.Equal(t, float64(1), stats["total_orders"])
	assert.Equal(t, float64(1), stats["total_feedback"])
	assert.Equal(t, float64(1), stats["lost_found_items"])
	assert.Equal(t, float64(0), stats["rides_offered"])
	assert.Equal(t, float64(1), stats["rides_booked"])

	// The driver's view counts the offered ride, not the booking
	w = doRequest(r, "GET", "/api/dashboard/stats", driverToken, nil)
	require.Equal(t, 200, w.Code)
	stats = decodeBody(t, w)["user_stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["rides_offered"])
	assert.Equal(t, float64(0), stats["rides_booked"])
}

func TestRecentActivity(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "student", false)

	createTestIssue(t, r, token, "Electrical", "High")
	placeTestOrder(t, r, token)
	submitTestFeedback(t, r, token, "Cafeteria", 4)

	w := doRequest(r, "GET", "/api/dashboard/recent-activity", token, nil)
	require.Equal(t, 200, w.Code)

	activities := decodeBody(t, w)["activities"].([]interface{})
	require.Len(t, activities, 3)

	types := make(map[string]bool)
	for _, a := range activities {
		entry := a.(map[string]interface{})
		types[entry["type"].(string)] = true
		assert.NotEmpty(t, entry["title"])
		assert.NotEmpty(t, entry["created_at"])
	}
	assert.True(t, types["issue"])
	assert.True(t, types["order"])
	assert.True(t, types["feedback"])

	w = doRequest(r, "GET", "/api/dashboard/recent-activity?limit=2", token, nil)
	require.Equal(t, 200, w.Code)
	assert.Len(t, decodeBody(t, w)["activities"].([]interface{}), 2)
}

func TestDashboardOverview(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	driver, _ := createTestUser(t, db, "driver", false)
	_, token := createTestUser(t, db, "student", false)

	ride := createTestRide(t, db, driver.ID, 3, futureTime(24))
	require.Equal(t, 201, doRequest(r, "POST", bookPath(ride.ID), token, nil).Code)
	createTestIssue(t, r, token, "Electrical", "High")

	w := doRequest(r, "GET", "/api/dashboard/overview", token, nil)
	require.Equal(t, 200, w.Code)

	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "student", user["username"])

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["rides_booked"])

	assert.NotEmpty(t, body["recent_activities"])

	upcoming := body["upcoming_rides"].([]interface{})
	require.Len(t, upcoming, 1)
	entry := upcoming[0].(map[string]interface{})
	assert.Equal(t, "passenger", entry["type"])
	assert.Equal(t, float64(ride.ID), entry["ride"].(map[string]interface{})["id"])
}

func TestAdminStats(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	_, token := createTestUser(t, db, "student", false)
	_, admin := createTestUser(t, db, "admin", true)

	createTestIssue(t, r, token, "Electrical", "High")
	createTestIssue(t, r, token, "Plumbing", "Low")
	submitTestFeedback(t, r, token, "Transport", 5)

	w := doRequest(r, "GET", "/api/dashboard/admin/stats", token, nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(r, "GET", "/api/dashboard/admin/stats", admin, nil)
	require.Equal(t, 200, w.Code)

	body := decodeBody(t, w)
	system := body["system_stats"].(map[string]interface{})
	assert.Equal(t, float64(2), system["total_users"])
	assert.Equal(t, float64(2), system["total_issues"])
	assert.Equal(t, float64(1), system["total_feedback"])

	weekly := body["weekly_stats"].(map[string]interface{})
	assert.Equal(t, float64(2), weekly["new_users"])
	assert.Equal(t, float64(2), weekly["new_issues"])

	breakdowns := body["breakdowns"].(map[string]interface{})
	categories := breakdowns["issue_categories"].(map[string]interface{})
	assert.Equal(t, float64(1), categories["Electrical"])
	ratings := breakdowns["feedback_ratings"].(map[string]interface{})
	assert.Equal(t, float64(1), ratings["5_star"])
}
