package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okothmichael/tutor_marketplace/database"
	"github.com/okothmichael/tutor_marketplace/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	sharedDB   *gorm.DB
	sharedOnce sync.Once
)

// SetupDB starts a single postgres container shared across the whole
// test binary, runs the migrations, and wires the global connection the
// handlers use. Tests using it cannot run in parallel.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	os.Setenv("JWT_SECRET", "test-secret")

	sharedOnce.Do(func() {
		ctx := context.Background()
		pgContainer, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("testdb"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		require.NoError(t, err)

		dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			SkipDefaultTransaction:                   true,
			DisableForeignKeyConstraintWhenMigrating: true,
			DisableNestedTransaction:                 true,
			TranslateError:                           true,
		})
		require.NoError(t, err)

		require.NoError(t, db.AutoMigrate(
			&models.User{},
			&models.TutorProfile{},
			&models.Category{},
			&models.AvailabilitySlot{},
			&models.Booking{},
			&models.Review{},
			&models.ErrorReport{},
		))

		sharedDB = db
	})

	database.DB = sharedDB
	return sharedDB
}

// TruncateAll resets every table between subtests.
func TruncateAll(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.Exec(`TRUNCATE TABLE
		reviews, bookings, availability_slots, tutor_categories,
		tutor_profiles, categories, error_reports, users
		RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)
}

// CreateUser inserts a user with a bcrypt-hashed password and returns it.
func CreateUser(t *testing.T, db *gorm.DB, fullName, email, password, role string) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		FullName: fullName,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
