package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository/memory"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/dom/vehicle-reservation/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanges_PublishFailureDoesNotFailWrite(t *testing.T) {
	h := newHarness(t)
	h.pub.err = errors.New("broker down")
	ctx := context.Background()

	d, err := h.services.Location.CreateDestination(ctx, domain.Destination{City: "Town A"})
	require.NoError(t, err)

	got, err := h.services.Location.GetDestination(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Town A", got.City)
	assert.Equal(t, []int64{d.ID}, h.pub.of(domain.KindDestination, events.OpCreated))
}

func TestChanges_NilCollaborators(t *testing.T) {
	repos := memory.NewRepositories()
	services := service.NewServices(repos, testutil.TestConfig(), nil, nil, nil)
	ctx := context.Background()

	d, err := services.Location.CreateDestination(ctx, domain.Destination{City: "Town A"})
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
}
