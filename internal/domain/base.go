package domain

import "time"

// Base is embedded by every persisted entity. ID is assigned by the store on
// insert and never changes afterwards.
type Base struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) GetID() int64 { return b.ID }

func (b *Base) SetID(id int64) { b.ID = id }

// Touch stamps the record the way gorm does on save.
func (b *Base) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Record is implemented by pointers to every entity kind.
type Record interface {
	GetID() int64
	SetID(id int64)
	Touch(now time.Time)
}

// Kind names an entity kind in change events, metrics and cache keys.
type Kind string

const (
	KindUserCredential  Kind = "user_credential"
	KindUserDetail      Kind = "user_detail"
	KindDestination     Kind = "destination"
	KindRoute           Kind = "route"
	KindBookingOffice   Kind = "booking_office"
	KindOperator        Kind = "operator"
	KindSeatLayout      Kind = "seat_layout"
	KindVehicle         Kind = "vehicle"
	KindRouteSchedule   Kind = "route_schedule"
	KindVehicleSchedule Kind = "vehicle_schedule"
)

// Address is stored inline on its owner with a column prefix.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Area     string `json:"area"`
	City     string `json:"city"`
	State    string `json:"state"`
	PostCode string `json:"postCode"`
	Country  string `json:"country"`
}
