package config

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
	"hotel-booking-engine/store/gormstore"
	"hotel-booking-engine/store/memory"
	"hotel-booking-engine/utils"
)

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
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := utils.EnvOrDefault("MYSQL_URL", os.Getenv("DATABASE_URL"))
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "hotel_booking")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

// resolvePostgresDSN accepts a postgres:// URL as is; pgx parses both forms.
func resolvePostgresDSN() string {
	if raw := utils.EnvOrDefault("DATABASE_URL", ""); raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		utils.EnvOrDefault("DB_HOST", "127.0.0.1"),
		utils.EnvOrDefault("DB_USER", "postgres"),
		utils.EnvOrDefault("DB_PASS", ""),
		utils.EnvOrDefault("DB_NAME", "hotel_booking"),
		utils.EnvOrDefault("DB_PORT", "5432"),
		utils.EnvOrDefault("DB_SSLMODE", "disable"),
	)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func openGorm(conf Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conf.DBDriver {
	case DriverPostgres:
		dialector = postgres.Open(resolvePostgresDSN())
	default:
		dsn, err := resolveMySQLDSN()
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormLogLevel(conf.DBLogLevel),
			Colorful:      true,
		},
	)
	return gorm.Open(dialector, &gorm.Config{Logger: newLogger, TranslateError: true})
}

// OpenStore connects the configured backend, migrates it and optionally
// seeds demo data. The returned close func releases the connection pool.
func OpenStore(ctx context.Context, conf Config) (store.Store, func() error, error) {
	if conf.DBDriver == DriverMemory {
		st := memory.New()
		log.Println("⚠️  DB_DRIVER=memory: data lives in process and is lost on restart")
		if conf.SeedDemo {
			if err := SeedDemoData(ctx, st); err != nil {
				return nil, nil, err
			}
		}
		return st, func() error { return nil }, nil
	}

	db, err := openGorm(conf)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(utils.EnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetConnMaxLifetime(time.Hour)

	// AutoMigrate in parent->child order
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Hotel{},
		&models.Room{},
		&models.Customer{},
		&models.ExtraCharge{},
		&models.Booking{},
		&models.RoomBooking{},
		&models.RoomAvailability{},
		&models.PersonalizedCharge{},
	); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	st := gormstore.New(db)
	if conf.SeedDemo {
		var hotels int64
		if err := db.WithContext(ctx).Model(&models.Hotel{}).Count(&hotels).Error; err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		if hotels == 0 {
			if err := SeedDemoData(ctx, st); err != nil {
				sqlDB.Close()
				return nil, nil, err
			}
		} else {
			log.Println("Demo data already seeded")
		}
	}
	return st, sqlDB.Close, nil
}

// SeedDemoData creates one hotel with a handful of rooms, a customer and one
// charge of every type.
func SeedDemoData(ctx context.Context, st store.Store) error {
	return st.Transaction(ctx, func(tx store.Store) error {
		hotel := models.Hotel{Name: "Demo Hotel", Address: "1 Beach Road", Email: "frontdesk@demo.local"}
		if err := tx.CreateHotel(ctx, &hotel); err != nil {
			return err
		}
		for _, name := range []string{"101", "102", "103", "201", "202"} {
			room := models.Room{HotelID: hotel.ID, Name: name, Description: "Standard room"}
			if err := tx.CreateRoom(ctx, &room); err != nil {
				return err
			}
		}
		customer := models.Customer{HotelID: hotel.ID, FullName: "Demo Guest", Email: "guest@demo.local"}
		if err := tx.CreateCustomer(ctx, &customer); err != nil {
			return err
		}

		charges := []models.ExtraCharge{
			{Name: "VAT", TypeID: models.ChargeTypePercentage, Amount: decimal.RequireFromString("0.07")},
			{Name: "Breakfast", TypeID: models.ChargeTypeDaily, Amount: decimal.NewFromInt(250)},
			{Name: "Final cleaning", TypeID: models.ChargeTypePerRoom, Amount: decimal.NewFromInt(300)},
			{Name: "Airport transfer", TypeID: models.ChargeTypeGeneral, Amount: decimal.NewFromInt(900)},
			{Name: "City tax", TypeID: models.ChargeTypePerPerson, Amount: decimal.NewFromInt(50)},
		}
		for i := range charges {
			charges[i].HotelID = hotel.ID
			if err := tx.CreateExtraCharge(ctx, &charges[i]); err != nil {
				return err
			}
		}
		log.Printf("🌱 Demo data seeded (hotel %d)", hotel.ID)
		return nil
	})
}
