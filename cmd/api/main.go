package main

import (
	"log"
	"os"
	"time"

	"github.com/campuslink/portal-backend/internal/database"
	"github.com/campuslink/portal-backend/internal/handlers"
	"github.com/campuslink/portal-backend/internal/middleware"
	"github.com/campuslink/portal-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Redis is optional: stats endpoints fall back to direct queries
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "healthy", "message": "College Portal API is running"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))

			me := auth.Group("/me")
			me.Use(middleware.AuthMiddleware())
			{
				me.GET("", handlers.GetProfile(db))
				me.PUT("", handlers.UpdateProfile(db))
			}
		}

		transport := api.Group("/transport")
		{
			transport.GET("/rides", handlers.GetRides(db))
			transport.GET("/rides/:id", handlers.GetRide(db))
			transport.GET("/stats", handlers.GetTransportStats(db))

			protected := transport.Group("/")
			protected.Use(middleware.AuthMiddleware())
			{
				protected.POST("/rides", handlers.OfferRide(db))
				protected.GET("/rides/my", handlers.GetMyRides(db))
				protected.POST("/rides/:id/book", handlers.BookRide(db))
				protected.PUT("/rides/:id/cancel", handlers.CancelRide(db))
				protected.GET("/bookings/my", handlers.GetMyBookings(db))
				protected.PUT("/bookings/:id/cancel", handlers.CancelBooking(db))
			}
		}

		issues := api.Group("/issues")
		{
			issues.GET("", handlers.GetIssues(db))
			issues.GET("/stats", handlers.GetIssueStats(db))
			issues.GET("/:id", handlers.GetIssue(db))

			protected := issues.Group("")
			protected.Use(middleware.AuthMiddleware())
			{
				protected.POST("", handlers.CreateIssue(db))
				protected.GET("/my", handlers.GetMyIssues(db))
				protected.POST("/:id/upvote", handlers.UpvoteIssue(db))
				protected.DELETE("/:id", handlers.DeleteIssue(db))
				protected.PUT("/:id/status", middleware.AdminMiddleware(), handlers.UpdateIssueStatus(db))
			}
		}

		cafeteria := api.Group("/cafeteria")
		{
			cafeteria.GET("/menu", handlers.GetMenu())

			protected := cafeteria.Group("/")
			protected.Use(middleware.AuthMiddleware())
			{
				protected.POST("/orders", handlers.PlaceOrder(db))
				protected.GET("/orders", handlers.GetUserOrders(db))
				protected.GET("/orders/:id", handlers.GetOrder(db))
				protected.PUT("/orders/:id/cancel", handlers.CancelOrder(db))

				admin := protected.Group("/admin")
				admin.Use(middleware.AdminMiddleware())
				{
					admin.GET("/orders", handlers.GetAllOrders(db))
					admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
				}
			}
		}

		lostFound := api.Group("/lost-found")
		{
			lostFound.GET("/items", handlers.GetLostFoundItems(db))
			lostFound.GET("/items/:id", handlers.GetLostFoundItem(db))
			lostFound.GET("/stats", handlers.GetLostFoundStats(db))

			protected := lostFound.Group("/")
			protected.Use(middleware.AuthMiddleware())
			{
				protected.POST("/items", handlers.CreateLostFoundItem(db))
				protected.GET("/items/my", handlers.GetMyLostFoundItems(db))
				protected.PUT("/items/:id", handlers.UpdateLostFoundItem(db))
				protected.PUT("/items/:id/resolve", handlers.ResolveLostFoundItem(db))
				protected.DELETE("/items/:id", handlers.DeleteLostFoundItem(db))
			}
		}

		feedback := api.Group("/feedback")
		{
			feedback.GET("", handlers.GetFeedbackList(db))
			feedback.GET("/categories", handlers.GetFeedbackCategories())
			feedback.GET("/stats", handlers.GetFeedbackStats(db))

			protected := feedback.Group("")
			protected.Use(middleware.AuthMiddleware())
			{
				protected.POST("", handlers.SubmitFeedback(db))
				protected.GET("/my", handlers.GetMyFeedback(db))
				protected.DELETE("/:id", handlers.DeleteFeedback(db))
			}
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(middleware.AuthMiddleware())
		{
			dashboard.GET("/stats", handlers.GetDashboardStats(db))
			dashboard.GET("/recent-activity", handlers.GetRecentActivity(db))
			dashboard.GET("/overview", handlers.GetDashboardOverview(db))
			dashboard.GET("/admin/stats", middleware.AdminMiddleware(), handlers.GetAdminStats(db))
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
