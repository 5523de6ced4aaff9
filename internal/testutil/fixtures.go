package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// UserBuilder creates test credentials with a builder pattern
type UserBuilder struct {
	username string
	password string
	active   bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
		active:   true,
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) Inactive() *UserBuilder {
	b.active = false
	return b
}

// Build stores the credential and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, repos *repository.Repositories) (*domain.UserCredential, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	cred := &domain.UserCredential{
		Username: domain.NormalizeUsername(b.username),
		Password: string(hashed),
		Active:   b.active,
	}
	if err := repos.UserCredential.Insert(context.Background(), cred); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return cred, b.password
}

// Seed inserts reference rows directly through the repositories, bypassing
// services so no change events fire.
type Seed struct {
	t     *testing.T
	repos *repository.Repositories
}

func NewSeed(t *testing.T, repos *repository.Repositories) *Seed {
	return &Seed{t: t, repos: repos}
}

func (s *Seed) Destination(city string) *domain.Destination {
	s.t.Helper()
	d := &domain.Destination{City: city, State: "NSW", PostCode: 2000, Active: true}
	if err := s.repos.Destination.Insert(context.Background(), d); err != nil {
		s.t.Fatalf("failed to create destination %q: %v", city, err)
	}
	return d
}

// RoutePair inserts both directions between a and b.
func (s *Seed) RoutePair(a, b *domain.Destination) (*domain.Route, *domain.Route) {
	s.t.Helper()
	out := &domain.Route{DepartureID: a.ID, ArrivalID: b.ID, Active: true}
	back := &domain.Route{DepartureID: b.ID, ArrivalID: a.ID, Active: true}
	for _, r := range []*domain.Route{out, back} {
		if err := s.repos.Route.Insert(context.Background(), r); err != nil {
			s.t.Fatalf("failed to create route %d->%d: %v", r.DepartureID, r.ArrivalID, err)
		}
	}
	return out, back
}

func (s *Seed) Operator(name string) *domain.Operator {
	s.t.Helper()
	o := &domain.Operator{
		Name:         name,
		PrimaryEmail: "ops@" + name + ".example.com",
		Active:       true,
	}
	if err := s.repos.Operator.Insert(context.Background(), o); err != nil {
		s.t.Fatalf("failed to create operator %q: %v", name, err)
	}
	return o
}

func (s *Seed) SeatLayout() *domain.SeatLayout {
	s.t.Helper()
	l := &domain.SeatLayout{Rows: 10, Columns: 4, Layout: "AA_AA", Active: true}
	if err := s.repos.SeatLayout.Insert(context.Background(), l); err != nil {
		s.t.Fatalf("failed to create seat layout: %v", err)
	}
	return l
}

func (s *Seed) Vehicle(vehicleType string, layout *domain.SeatLayout) *domain.Vehicle {
	s.t.Helper()
	v := &domain.Vehicle{
		VIN:                "VIN-" + uuid.New().String()[:8],
		VehicleType:        vehicleType,
		Manufacturer:       "Volvo",
		Model:              "B8R",
		Year:               2022,
		RegistrationState:  "NSW",
		RegistrationNumber: "BUS-" + uuid.New().String()[:4],
		RegistrationExpiry: domain.Date(time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)),
		TotalSeats:         40,
		Active:             true,
	}
	if layout != nil {
		v.SeatLayoutID = layout.ID
	}
	if err := s.repos.Vehicle.Insert(context.Background(), v); err != nil {
		s.t.Fatalf("failed to create vehicle: %v", err)
	}
	return v
}

func (s *Seed) RouteSchedule(op *domain.Operator, route *domain.Route, day string) *domain.RouteSchedule {
	s.t.Helper()
	rs := &domain.RouteSchedule{
		OperatorID: op.ID,
		RouteID:    route.ID,
		Day:        day,
		Time:       datatypes.NewTime(9, 30, 0, 0),
		Active:     true,
	}
	if err := s.repos.RouteSchedule.Insert(context.Background(), rs); err != nil {
		s.t.Fatalf("failed to create route schedule: %v", err)
	}
	return rs
}

func (s *Seed) VehicleSchedule(op *domain.Operator, v *domain.Vehicle, rs *domain.RouteSchedule, date time.Time) *domain.VehicleSchedule {
	s.t.Helper()
	vs := &domain.VehicleSchedule{
		OperatorID:      op.ID,
		VehicleID:       v.ID,
		RouteScheduleID: rs.ID,
		Date:            domain.Date(date),
		Active:          true,
	}
	if err := s.repos.VehicleSchedule.Insert(context.Background(), vs); err != nil {
		s.t.Fatalf("failed to create vehicle schedule: %v", err)
	}
	return vs
}

// NewJSONRequest builds a request with body encoded as JSON.
func NewJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoJSON sends a JSON request and returns the response. The caller closes
// the body.
func DoJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(NewJSONRequest(t, method, url, body))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}
