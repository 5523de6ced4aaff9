// Package memory is an in-process implementation of the repository contracts.
// It backs service tests and local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/repository"
)

type recordPtr[E any] interface {
	*E
	domain.Record
}

type snapshotter interface {
	snapshot() (restore func())
}

// DB owns every table. mu guards row access, txMu serializes transactions
// (but not writes made outside one, see WithinTransaction).
type DB struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	tables []snapshotter
	nowFn  func() time.Time
}

type table[E any, P recordPtr[E]] struct {
	db     *DB
	rows   map[int64]E
	nextID int64
	// unique returns the key of a unique constraint, or "" when unset.
	unique func(E) string
}

func newTable[E any, P recordPtr[E]](db *DB, unique func(E) string) *table[E, P] {
	t := &table[E, P]{db: db, rows: make(map[int64]E), unique: unique}
	db.tables = append(db.tables, t)
	return t
}

func (t *table[E, P]) snapshot() func() {
	t.db.mu.RLock()
	rows := make(map[int64]E, len(t.rows))
	for id, e := range t.rows {
		rows[id] = e
	}
	nextID := t.nextID
	t.db.mu.RUnlock()

	return func() {
		t.db.mu.Lock()
		t.rows = rows
		t.nextID = nextID
		t.db.mu.Unlock()
	}
}

func (t *table[E, P]) Get(_ context.Context, id int64) (*E, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	e, ok := t.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (t *table[E, P]) List(_ context.Context) ([]*E, error) {
	return t.filter(func(E) bool { return true }), nil
}

func (t *table[E, P]) Insert(_ context.Context, e *E) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if err := t.checkUnique(*e, 0); err != nil {
		return err
	}
	t.nextID++
	P(e).SetID(t.nextID)
	P(e).Touch(t.db.nowFn())
	t.rows[t.nextID] = *e
	return nil
}

func (t *table[E, P]) Replace(_ context.Context, e *E) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	id := P(e).GetID()
	if _, ok := t.rows[id]; !ok {
		return domain.ErrNotFound
	}
	if err := t.checkUnique(*e, id); err != nil {
		return err
	}
	P(e).Touch(t.db.nowFn())
	t.rows[id] = *e
	return nil
}

func (t *table[E, P]) Delete(_ context.Context, id int64) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	delete(t.rows, id)
	return nil
}

func (t *table[E, P]) checkUnique(e E, self int64) error {
	if t.unique == nil {
		return nil
	}
	key := t.unique(e)
	if key == "" {
		return nil
	}
	for id, row := range t.rows {
		if id != self && t.unique(row) == key {
			return fmt.Errorf("%w: duplicate key %q", domain.ErrConflict, key)
		}
	}
	return nil
}

// filter returns copies of matching rows ordered by id.
func (t *table[E, P]) filter(match func(E) bool) []*E {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	ids := make([]int64, 0, len(t.rows))
	for id, e := range t.rows {
		if match(e) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*E, 0, len(ids))
	for _, id := range ids {
		e := t.rows[id]
		out = append(out, &e)
	}
	return out
}

func (t *table[E, P]) first(match func(E) bool) (*E, error) {
	rows := t.filter(match)
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

// NewRepositories returns repositories over a fresh, empty database.
func NewRepositories() *repository.Repositories {
	return newDB(time.Now).repositories()
}

// NewRepositoriesWithClock is NewRepositories with a fixed time source.
func NewRepositoriesWithClock(now func() time.Time) *repository.Repositories {
	return newDB(now).repositories()
}

type handles struct {
	userCredential  *userCredentialRepository
	userDetail      *userDetailRepository
	destination     *table[domain.Destination, *domain.Destination]
	route           *routeRepository
	bookingOffice   *bookingOfficeRepository
	operator        *table[domain.Operator, *domain.Operator]
	seatLayout      *table[domain.SeatLayout, *domain.SeatLayout]
	vehicle         *table[domain.Vehicle, *domain.Vehicle]
	routeSchedule   *routeScheduleRepository
	vehicleSchedule *vehicleScheduleRepository
}

type memDB struct {
	*DB
	h handles
}

func newDB(now func() time.Time) *memDB {
	db := &DB{nowFn: now}
	return &memDB{
		DB: db,
		h: handles{
			userCredential: &userCredentialRepository{newTable[domain.UserCredential](db, func(c domain.UserCredential) string {
				return domain.NormalizeUsername(c.Username)
			})},
			userDetail: &userDetailRepository{newTable[domain.UserDetail](db, func(d domain.UserDetail) string {
				return fmt.Sprint(d.UserID)
			})},
			destination: newTable[domain.Destination](db, nil),
			route: &routeRepository{newTable[domain.Route](db, func(r domain.Route) string {
				return fmt.Sprintf("%d:%d", r.DepartureID, r.ArrivalID)
			})},
			bookingOffice:   &bookingOfficeRepository{newTable[domain.BookingOffice](db, nil)},
			operator:        newTable[domain.Operator](db, nil),
			seatLayout:      newTable[domain.SeatLayout](db, nil),
			vehicle:         newTable[domain.Vehicle](db, nil),
			routeSchedule:   &routeScheduleRepository{newTable[domain.RouteSchedule](db, nil)},
			vehicleSchedule: &vehicleScheduleRepository{newTable[domain.VehicleSchedule](db, nil)},
		},
	}
}

func (m *memDB) repositories() *repository.Repositories {
	repos := m.bind()
	repos.Tx = &transactor{db: m}
	return repos
}

func (m *memDB) bind() *repository.Repositories {
	return &repository.Repositories{
		UserCredential:  m.h.userCredential,
		UserDetail:      m.h.userDetail,
		Destination:     m.h.destination,
		Route:           m.h.route,
		BookingOffice:   m.h.bookingOffice,
		Operator:        m.h.operator,
		SeatLayout:      m.h.seatLayout,
		Vehicle:         m.h.vehicle,
		RouteSchedule:   m.h.routeSchedule,
		VehicleSchedule: m.h.vehicleSchedule,
	}
}

type transactor struct {
	db *memDB
}

// WithinTransaction snapshots every table, runs fn and restores the snapshot
// when fn fails. Transactions are serialized; nested calls join the outer one.
//
// Writes made through the top-level repositories do not wait for a running
// transaction. A rollback restores whole tables, so such a write that lands
// while fn runs is undone with it. Callers that mix the two must not overlap
// them; the service tests drive one operation at a time.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()

	restores := make([]func(), 0, len(t.db.tables))
	for _, tbl := range t.db.tables {
		restores = append(restores, tbl.snapshot())
	}

	repos := t.db.bind()
	repos.Tx = nested{repos: repos}
	if err := fn(repos); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type nested struct {
	repos *repository.Repositories
}

func (n nested) WithinTransaction(_ context.Context, fn func(repos *repository.Repositories) error) error {
	return fn(n.repos)
}
