package domain

import "gorm.io/datatypes"

// RouteSchedule is a weekly departure of an operator on a route. Several
// schedules may share the same day and time.
type RouteSchedule struct {
	Base
	OperatorID int64          `json:"operatorId" gorm:"not null;index"`
	RouteID    int64          `json:"routeId" gorm:"not null;index"`
	Day        string         `json:"day"`
	Time       datatypes.Time `json:"time"`
	Active     bool           `json:"active"`
}

func (RouteSchedule) TableName() string { return "scheduling.route_schedules" }

// VehicleSchedule assigns a vehicle to a route schedule on a date.
type VehicleSchedule struct {
	Base
	OperatorID      int64 `json:"operatorId" gorm:"not null;index"`
	VehicleID       int64 `json:"vehicleId" gorm:"not null;index"`
	RouteScheduleID int64 `json:"routeScheduleId" gorm:"not null;index"`
	Date            Date  `json:"date"`
	Active          bool  `json:"active"`
}

func (VehicleSchedule) TableName() string { return "scheduling.vehicle_schedules" }

// RouteScheduleView is a RouteSchedule with its references flattened for
// display. It is never persisted and never fed back into an update.
type RouteScheduleView struct {
	RouteSchedule
	OperatorName  string `json:"operatorName"`
	DepartureCity string `json:"departureCity"`
	ArrivalCity   string `json:"arrivalCity"`
}

// VehicleScheduleView is a VehicleSchedule with its references flattened for
// display.
type VehicleScheduleView struct {
	VehicleSchedule
	OperatorName  string         `json:"operatorName"`
	DepartureCity string         `json:"departureCity"`
	ArrivalCity   string         `json:"arrivalCity"`
	VehicleType   string         `json:"vehicleType"`
	Day           string         `json:"day"`
	Time          datatypes.Time `json:"time"`
}
