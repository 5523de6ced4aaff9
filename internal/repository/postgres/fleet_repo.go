package postgres

import (
	"github.com/dom/vehicle-reservation/internal/domain"
	"gorm.io/gorm"
)

type operatorRepository struct {
	store[domain.Operator]
}

func NewOperatorRepository(db *gorm.DB) *operatorRepository {
	return &operatorRepository{store[domain.Operator]{db: db}}
}

type seatLayoutRepository struct {
	store[domain.SeatLayout]
}

func NewSeatLayoutRepository(db *gorm.DB) *seatLayoutRepository {
	return &seatLayoutRepository{store[domain.SeatLayout]{db: db}}
}

type vehicleRepository struct {
	store[domain.Vehicle]
}

func NewVehicleRepository(db *gorm.DB) *vehicleRepository {
	return &vehicleRepository{store[domain.Vehicle]{db: db}}
}
