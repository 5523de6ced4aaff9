package domain

type Destination struct {
	Base
	City     string `json:"city" gorm:"not null"`
	State    string `json:"state"`
	PostCode int    `json:"postCode"`
	Active   bool   `json:"active"`
}

func (Destination) TableName() string { return "location.destinations" }

// Route is one direction of travel. Routes are created and removed in pairs,
// see service.RouteService.
type Route struct {
	Base
	DepartureID int64 `json:"departureId" gorm:"not null;index:idx_route_endpoints,unique"`
	ArrivalID   int64 `json:"arrivalId" gorm:"not null;index:idx_route_endpoints,unique"`
	Active      bool  `json:"active"`

	// Name is "<departure city> - <arrival city>", resolved on read.
	Name string `json:"name" gorm:"-"`
}

func (Route) TableName() string { return "location.routes" }

func RouteName(departureCity, arrivalCity string) string {
	return departureCity + " - " + arrivalCity
}

type BookingOffice struct {
	Base
	DestinationID    int64  `json:"destinationId" gorm:"not null;index"`
	AddressLine1     string `json:"addressLine1"`
	AddressLine2     string `json:"addressLine2"`
	Area             string `json:"area"`
	Email            string `json:"email"`
	PrimaryContact   string `json:"primaryContact"`
	SecondaryContact string `json:"secondaryContact"`
	Active           bool   `json:"active"`
}

func (BookingOffice) TableName() string { return "location.booking_offices" }
