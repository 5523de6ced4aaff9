package domain

type Operator struct {
	Base
	Name             string  `json:"name" gorm:"not null"`
	Address          Address `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	PrimaryContact   string  `json:"primaryContact"`
	SecondaryContact string  `json:"secondaryContact"`
	PrimaryEmail     string  `json:"primaryEmail"`
	Active           bool    `json:"active"`
}

func (Operator) TableName() string { return "fleet.operators" }

// SeatLayout describes a vehicle's seating grid. Layout is an opaque
// descriptor string interpreted by clients.
type SeatLayout struct {
	Base
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Layout  string `json:"layout" gorm:"type:text"`
	Active  bool   `json:"active"`
}

func (SeatLayout) TableName() string { return "fleet.seat_layouts" }

type Vehicle struct {
	Base
	SeatLayoutID       int64  `json:"seatLayoutId" gorm:"index"`
	VIN                string `json:"vin" gorm:"column:vin"`
	VehicleType        string `json:"vehicleType"`
	Manufacturer       string `json:"manufacturer"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	RegistrationState  string `json:"registrationState"`
	RegistrationNumber string `json:"registrationNumber"`
	RegistrationExpiry Date   `json:"registrationExpiry"`
	TotalSeats         int    `json:"totalSeats"`
	DriveType          string `json:"driveType"`
	BaseStation        string `json:"baseStation"`
	Active             bool   `json:"active"`
}

func (Vehicle) TableName() string { return "fleet.vehicles" }
