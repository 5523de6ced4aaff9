package domain

// Merge functions copy the mutable fields of an incoming record onto a copy of
// the stored one. Identity, ownership links, timestamps and resolved display
// fields always come from stored.

func MergeUserCredential(incoming, stored UserCredential) UserCredential {
	out := stored
	out.Password = incoming.Password
	out.Active = incoming.Active
	return out
}

func MergeUserDetail(incoming, stored UserDetail) UserDetail {
	out := stored
	out.FirstName = incoming.FirstName
	out.MiddleName = incoming.MiddleName
	out.LastName = incoming.LastName
	out.DateOfBirth = incoming.DateOfBirth
	out.PrimaryContact = incoming.PrimaryContact
	out.SecondaryContact = incoming.SecondaryContact
	out.AlternateEmail = incoming.AlternateEmail
	out.Address = incoming.Address
	out.Postal = incoming.Postal
	out.UseAddressAsPostal = incoming.UseAddressAsPostal
	return out
}

func MergeDestination(incoming, stored Destination) Destination {
	out := stored
	out.City = incoming.City
	out.State = incoming.State
	out.PostCode = incoming.PostCode
	out.Active = incoming.Active
	return out
}

// MergeRoute only moves Active. The endpoints identify the pair.
func MergeRoute(incoming, stored Route) Route {
	out := stored
	out.Active = incoming.Active
	return out
}

func MergeBookingOffice(incoming, stored BookingOffice) BookingOffice {
	out := stored
	out.AddressLine1 = incoming.AddressLine1
	out.AddressLine2 = incoming.AddressLine2
	out.Area = incoming.Area
	out.Email = incoming.Email
	out.PrimaryContact = incoming.PrimaryContact
	out.SecondaryContact = incoming.SecondaryContact
	out.Active = incoming.Active
	return out
}

func MergeOperator(incoming, stored Operator) Operator {
	out := stored
	out.Name = incoming.Name
	out.Address = incoming.Address
	out.PrimaryContact = incoming.PrimaryContact
	out.SecondaryContact = incoming.SecondaryContact
	out.PrimaryEmail = incoming.PrimaryEmail
	out.Active = incoming.Active
	return out
}

func MergeSeatLayout(incoming, stored SeatLayout) SeatLayout {
	out := stored
	out.Rows = incoming.Rows
	out.Columns = incoming.Columns
	out.Layout = incoming.Layout
	out.Active = incoming.Active
	return out
}

func MergeVehicle(incoming, stored Vehicle) Vehicle {
	out := stored
	out.SeatLayoutID = incoming.SeatLayoutID
	out.VIN = incoming.VIN
	out.VehicleType = incoming.VehicleType
	out.Manufacturer = incoming.Manufacturer
	out.Model = incoming.Model
	out.Year = incoming.Year
	out.RegistrationState = incoming.RegistrationState
	out.RegistrationNumber = incoming.RegistrationNumber
	out.RegistrationExpiry = incoming.RegistrationExpiry
	out.TotalSeats = incoming.TotalSeats
	out.DriveType = incoming.DriveType
	out.BaseStation = incoming.BaseStation
	out.Active = incoming.Active
	return out
}

// MergeRouteSchedule keeps the owning operator.
func MergeRouteSchedule(incoming, stored RouteSchedule) RouteSchedule {
	out := stored
	out.RouteID = incoming.RouteID
	out.Day = incoming.Day
	out.Time = incoming.Time
	out.Active = incoming.Active
	return out
}

// MergeVehicleSchedule keeps the owning operator.
func MergeVehicleSchedule(incoming, stored VehicleSchedule) VehicleSchedule {
	out := stored
	out.RouteScheduleID = incoming.RouteScheduleID
	out.VehicleID = incoming.VehicleID
	out.Date = incoming.Date
	out.Active = incoming.Active
	return out
}
