package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	applog "hotel-reservation/logger"
	"hotel-reservation/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mustParseTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		applog.Fatal(fmt.Sprintf("Error parsing time for seeding (%s)", value), err)
	}
	return t
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	// stay dates and timestamps are stored in UTC
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func databaseURL() string {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	return raw
}

func resolveMySQLDSN() (string, error) {
	if raw := databaseURL(); raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

func resolvePostgresDSN() string {
	if raw := databaseURL(); raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		envOrDefault("DB_HOST", "127.0.0.1"),
		envOrDefault("DB_PORT", "5432"),
		envOrDefault("DB_USER", "postgres"),
		envOrDefault("DB_PASS", ""),
		envOrDefault("DB_NAME", "hotel_db"),
		envOrDefault("DB_SSLMODE", "disable"),
	)
}

// GormConfig is shared by the server and the tests: UTC clock, driver errors
// translated, SQL logged through logrus.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(applog.L(), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}
}

// ConnectDatabase opens the configured driver and migrates the schema.
func ConnectDatabase(cfg Config) (*gorm.DB, error) {
	level := logger.Warn
	if strings.EqualFold(cfg.LogLevel, "debug") {
		level = logger.Info
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres:
		dialector = postgres.Open(resolvePostgresDSN())
	default:
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, GormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	applog.Success("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if cfg.DBSeed {
		if err := SeedDatabase(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates the schema in parent->child order. On PostgreSQL it also adds
// the exclusion constraint that keeps confirmed stays of one room disjoint.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Hotel{},
		&models.RoomType{},
		&models.Room{},
		&models.ExtraService{},
		&models.Promotion{},
		&models.Customer{},
		&models.Booking{},
		&models.Payment{},
		&models.BookingStatusEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() == DriverPostgres {
		return createOverlapConstraint(db)
	}
	return nil
}

const overlapConstraint = "bookings_room_stay_no_overlap"

func createOverlapConstraint(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("create btree_gist extension: %w", err)
	}
	var exists bool
	if err := db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, overlapConstraint).
		Scan(&exists).Error; err != nil {
		return fmt.Errorf("check constraint %s: %w", overlapConstraint, err)
	}
	if exists {
		applog.Debug("Constraint already exists: " + overlapConstraint)
		return nil
	}
	stmt := fmt.Sprintf(`ALTER TABLE bookings ADD CONSTRAINT %s
		EXCLUDE USING gist (room_id WITH =, daterange(check_in, check_out, '[)') WITH &&)
		WHERE (status IN ('%s', '%s') AND deleted_at IS NULL)`,
		overlapConstraint, models.BookingStatusConfirmed, models.BookingStatusCheckedIn)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create constraint %s: %w", overlapConstraint, err)
	}
	applog.Success("Created constraint " + overlapConstraint)
	return nil
}

// SeedDatabase creates a demo hotel when the hotels table is empty.
func SeedDatabase(db *gorm.DB) error {
	var hotelCount int64
	if err := db.Model(&models.Hotel{}).Count(&hotelCount).Error; err != nil {
		return fmt.Errorf("count hotels: %w", err)
	}
	if hotelCount > 0 {
		applog.Info("Hotels already seeded")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		hotel := models.Hotel{
			Name:     "Riverside Demo Hotel",
			Timezone: "Asia/Bangkok",
			Address:  "1 Riverside Road",
			Email:    "frontdesk@hotel.local",
			Active:   true,
		}
		if err := tx.Create(&hotel).Error; err != nil {
			return fmt.Errorf("seed hotel: %w", err)
		}

		roomTypes := []models.RoomType{
			{HotelID: hotel.ID, TypeName: "Standard", Description: "Standard Room", MaxGuests: 2, BaseRate: 800000},
			{HotelID: hotel.ID, TypeName: "Superior", Description: "Superior Room", MaxGuests: 3, BaseRate: 1000000},
			{HotelID: hotel.ID, TypeName: "Deluxe", Description: "Deluxe Room", MaxGuests: 4, BaseRate: 1500000},
		}
		if err := tx.Create(&roomTypes).Error; err != nil {
			return fmt.Errorf("seed room types: %w", err)
		}

		var rooms []models.Room
		for i, rt := range roomTypes {
			rtID := rt.ID
			for n := 1; n <= 3; n++ {
				rooms = append(rooms, models.Room{
					HotelID:    hotel.ID,
					RoomTypeID: &rtID,
					RoomNumber: fmt.Sprintf("R%d%02d", i+1, n),
					Floor:      fmt.Sprintf("%d", i+1),
					Active:     true,
				})
			}
		}
		if err := tx.Create(&rooms).Error; err != nil {
			return fmt.Errorf("seed rooms: %w", err)
		}

		services := []models.ExtraService{
			{HotelID: hotel.ID, Name: "Breakfast", Price: 150000, Unit: models.ServiceUnitPerGuestNight, Active: true},
			{HotelID: hotel.ID, Name: "Parking", Price: 100000, Unit: models.ServiceUnitPerNight, Active: true},
			{HotelID: hotel.ID, Name: "Airport transfer", Price: 500000, Unit: models.ServiceUnitPerStay, Active: true},
		}
		if err := tx.Create(&services).Error; err != nil {
			return fmt.Errorf("seed services: %w", err)
		}

		minTotal := int64(1000000)
		promos := []models.Promotion{
			{
				HotelID: hotel.ID, Code: "SUMMER10", Name: "Summer 10%",
				DiscountType: models.DiscountPercent, Value: 10,
				ValidFrom:  mustParseTime(time.RFC3339, "2025-01-01T00:00:00Z"),
				ValidUntil: mustParseTime(time.RFC3339, "2030-12-31T23:59:59Z"),
				Active:     true,
			},
			{
				HotelID: hotel.ID, Code: "WELCOME200K", Name: "Welcome discount",
				DiscountType: models.DiscountFixed, Value: 200000, MinTotal: &minTotal,
				ValidFrom:  mustParseTime(time.RFC3339, "2025-01-01T00:00:00Z"),
				ValidUntil: mustParseTime(time.RFC3339, "2030-12-31T23:59:59Z"),
				Active:     true,
			},
		}
		if err := tx.Create(&promos).Error; err != nil {
			return fmt.Errorf("seed promotions: %w", err)
		}

		applog.Success(fmt.Sprintf("Seeded hotel %d with %d rooms", hotel.ID, len(rooms)))
		return nil
	})
}
