package database

import (
	"os"

	"github.com/campuslink/portal-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}

	// Seat bookkeeping is also enforced at the database level. A Confirmed
	// booking is unique per (ride, passenger); cancelled rows don't count so a
	// passenger may rebook after cancelling.
	if db.Dialector.Name() == "postgres" {
		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_total_seats_check`)
		if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_total_seats_check CHECK (total_seats BETWEEN 1 AND 8)`).Error; err != nil {
			return err
		}

		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_available_seats_check`)
		if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_available_seats_check CHECK (available_seats BETWEEN 0 AND total_seats)`).Error; err != nil {
			return err
		}
	}

	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_confirmed_booking_per_passenger ON ride_bookings (ride_id, passenger_id) WHERE status = 'Confirmed'`).Error; err != nil {
		return err
	}

	return seedAdminUser(db)
}

// seedAdminUser creates the initial admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured and no admin exists yet.
func seedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Username: "admin",
		Email:    email,
		Password: password,
		IsAdmin:  true,
	}
	if err := admin.HashPassword(); err != nil {
		return err
	}
	return db.Create(&admin).Error
}
