package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository"
	"github.com/dom/vehicle-reservation/internal/repository/memory"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/dom/vehicle-reservation/internal/testutil"
	"go.uber.org/zap"
)

// recordingPublisher keeps every published change event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) of(kind domain.Kind, op events.Op) []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []int64
	for _, ev := range p.events {
		if ev.Kind == kind && ev.Op == op {
			ids = append(ids, ev.EntityID)
		}
	}
	return ids
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

// mapViews is an in-memory cache.ViewCache that counts traffic.
type mapViews struct {
	mu            sync.Mutex
	gen           int64
	entries       map[string][]byte
	hits, misses  int
	invalidations int
}

func newMapViews() *mapViews {
	return &mapViews{entries: make(map[string][]byte)}
}

func (v *mapViews) Generation(context.Context) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen, nil
}

func (v *mapViews) Get(_ context.Context, gen int64, key string, dst interface{}) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	raw, ok := v.entries[fmt.Sprintf("%d:%s", gen, key)]
	if !ok {
		v.misses++
		return false, nil
	}
	v.hits++
	return true, json.Unmarshal(raw, dst)
}

func (v *mapViews) Set(_ context.Context, gen int64, key string, val interface{}) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[fmt.Sprintf("%d:%s", gen, key)] = raw
	return nil
}

func (v *mapViews) Invalidate(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.invalidations++
	return nil
}

type harness struct {
	repos    *repository.Repositories
	services *service.Services
	pub      *recordingPublisher
	views    *mapViews
	seed     *testutil.Seed
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repos := memory.NewRepositories()
	pub := &recordingPublisher{}
	views := newMapViews()
	return &harness{
		repos:    repos,
		services: service.NewServices(repos, testutil.TestConfig(), pub, views, zap.NewNop()),
		pub:      pub,
		views:    views,
		seed:     testutil.NewSeed(t, repos),
	}
}
