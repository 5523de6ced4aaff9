package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Schemas group the tables by domain area.
var Schemas = []string{"identity", "location", "fleet", "scheduling"}

// Models lists every persisted entity in migration order.
func Models() []interface{} {
	return []interface{}{
		&domain.UserCredential{},
		&domain.UserDetail{},
		&domain.Destination{},
		&domain.Route{},
		&domain.BookingOffice{},
		&domain.Operator{},
		&domain.SeatLayout{},
		&domain.Vehicle{},
		&domain.RouteSchedule{},
		&domain.VehicleSchedule{},
	}
}

// NewConnection opens a pooled gorm connection and verifies it with a ping.
// Driver errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewConnection(ctx context.Context, databaseURL string, maxConns int, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns / 2)
	}
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info("postgres connected", zap.Int("max_conns", maxConns))
	return db, nil
}

// Migrate creates the schemas and auto-migrates every table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	for _, schema := range Schemas {
		if err := db.WithContext(ctx).Exec("CREATE SCHEMA IF NOT EXISTS " + schema).Error; err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
	}
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		UserCredential:  NewUserCredentialRepository(db),
		UserDetail:      NewUserDetailRepository(db),
		Destination:     NewDestinationRepository(db),
		Route:           NewRouteRepository(db),
		BookingOffice:   NewBookingOfficeRepository(db),
		Operator:        NewOperatorRepository(db),
		SeatLayout:      NewSeatLayoutRepository(db),
		Vehicle:         NewVehicleRepository(db),
		RouteSchedule:   NewRouteScheduleRepository(db),
		VehicleSchedule: NewVehicleScheduleRepository(db),
		Tx:              &transactor{db: db},
	}
}

type transactor struct {
	db *gorm.DB
}

// WithinTransaction binds a fresh set of repositories to one gorm transaction.
// Nested calls become savepoints.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
