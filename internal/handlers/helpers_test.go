package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuslink/portal-backend/internal/database"
	"github.com/campuslink/portal-backend/internal/middleware"
	"github.com/campuslink/portal-backend/internal/models"
	"github.com/campuslink/portal-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database limited to a single
// connection, so gorm transactions serialize exactly like row locks do on
// postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

// newTestRouter mirrors the route wiring from cmd/api/main.go.
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", Register(db))
	auth.POST("/login", Login(db))
	me := auth.Group("/me")
	me.Use(middleware.AuthMiddleware())
	me.GET("", GetProfile(db))
	me.PUT("", UpdateProfile(db))

	transport := api.Group("/transport")
	transport.GET("/rides", GetRides(db))
	transport.GET("/rides/:id", GetRide(db))
	transport.GET("/stats", GetTransportStats(db))
	transportAuth := transport.Group("/")
	transportAuth.Use(middleware.AuthMiddleware())
	transportAuth.POST("/rides", OfferRide(db))
	transportAuth.GET("/rides/my", GetMyRides(db))
	transportAuth.POST("/rides/:id/book", BookRide(db))
	transportAuth.PUT("/rides/:id/cancel", CancelRide(db))
	transportAuth.GET("/bookings/my", GetMyBookings(db))
	transportAuth.PUT("/bookings/:id/cancel", CancelBooking(db))

	issues := api.Group("/issues")
	issues.GET("", GetIssues(db))
	issues.GET("/stats", GetIssueStats(db))
	issues.GET("/:id", GetIssue(db))
	issuesAuth := issues.Group("")
	issuesAuth.Use(middleware.AuthMiddleware())
	issuesAuth.POST("", CreateIssue(db))
	issuesAuth.GET("/my", GetMyIssues(db))
	issuesAuth.POST("/:id/upvote", UpvoteIssue(db))
	issuesAuth.DELETE("/:id", DeleteIssue(db))
	issuesAuth.PUT("/:id/status", middleware.AdminMiddleware(), UpdateIssueStatus(db))

	cafeteria := api.Group("/cafeteria")
	cafeteria.GET("/menu", GetMenu())
	cafeteriaAuth := cafeteria.Group("/")
	cafeteriaAuth.Use(middleware.AuthMiddleware())
	cafeteriaAuth.POST("/orders", PlaceOrder(db))
	cafeteriaAuth.GET("/orders", GetUserOrders(db))
	cafeteriaAuth.GET("/orders/:id", GetOrder(db))
	cafeteriaAuth.PUT("/orders/:id/cancel", CancelOrder(db))
	cafeteriaAdmin := cafeteriaAuth.Group("/admin")
	cafeteriaAdmin.Use(middleware.AdminMiddleware())
	cafeteriaAdmin.GET("/orders", GetAllOrders(db))
	cafeteriaAdmin.PUT("/orders/:id/status", UpdateOrderStatus(db))

	lostFound := api.Group("/lost-found")
	lostFound.GET("/items", GetLostFoundItems(db))
	lostFound.GET("/items/:id", GetLostFoundItem(db))
	lostFound.GET("/stats", GetLostFoundStats(db))
	lostFoundAuth := lostFound.Group("/")
	lostFoundAuth.Use(middleware.AuthMiddleware())
	lostFoundAuth.POST("/items", CreateLostFoundItem(db))
	lostFoundAuth.GET("/items/my", GetMyLostFoundItems(db))
	lostFoundAuth.PUT("/items/:id", UpdateLostFoundItem(db))
	lostFoundAuth.PUT("/items/:id/resolve", ResolveLostFoundItem(db))
	lostFoundAuth.DELETE("/items/:id", DeleteLostFoundItem(db))

	feedback := api.Group("/feedback")
	feedback.GET("", GetFeedbackList(db))
	feedback.GET("/categories", GetFeedbackCategories())
	feedback.GET("/stats", GetFeedbackStats(db))
	feedbackAuth := feedback.Group("")
	feedbackAuth.Use(middleware.AuthMiddleware())
	feedbackAuth.POST("", SubmitFeedback(db))
	feedbackAuth.GET("/my", GetMyFeedback(db))
	feedbackAuth.DELETE("/:id", DeleteFeedback(db))

	dashboard := api.Group("/dashboard")
	dashboard.Use(middleware.AuthMiddleware())
	dashboard.GET("/stats", GetDashboardStats(db))
	dashboard.GET("/recent-activity", GetRecentActivity(db))
	dashboard.GET("/overview", GetDashboardOverview(db))
	dashboard.GET("/admin/stats", middleware.AdminMiddleware(), GetAdminStats(db))

	return r
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) (*models.User, string) {
	t.Helper()
	testUserSeq++

	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s%d@college.edu", username, testUserSeq),
		Password: "secret123",
		IsAdmin:  isAdmin,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(&user)
	require.NoError(t, err)
	return &user, token
}

func createTestRide(t *testing.T, db *gorm.DB, driverID uint, seats int, departure time.Time) *models.Ride {
	t.Helper()
	ride := models.Ride{
		DriverID:       driverID,
		FromLocation:   "North Campus",
		ToLocation:     "City Center",
		DepartureTime:  departure,
		TotalSeats:     seats,
		AvailableSeats: seats,
		PricePerPerson: 50,
		Status:         models.RideStatusActive,
	}
	require.NoError(t, db.Create(&ride).Error)
	return &ride
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func futureTime(hours int) time.Time {
	return time.Now().UTC().Add(time.Duration(hours) * time.Hour)
}
