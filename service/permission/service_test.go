package permission_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/elC0mpa/cost-doctor/service"
	"github.com/elC0mpa/cost-doctor/service/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_InitialState(t *testing.T) {
	g := permission.NewGate()
	assert.Equal(t, permission.StateChecking, g.State())
	assert.True(t, g.CanSubmit())
}

func TestGate_Succeed(t *testing.T) {
	g := permission.NewGate()
	g.Begin()
	g.Succeed()
	assert.Equal(t, permission.StateReady, g.State())
}

func TestGate_AccessDenied(t *testing.T) {
	g := permission.NewGate()
	g.Begin()

	err := fmt.Errorf("failed to query costs: %w", &service.AccessDeniedError{Environments: []string{"sub-1", "sub-2"}})
	state := g.Fail(err)

	assert.Equal(t, permission.StateNeedsSetup, state)
	assert.Equal(t, []string{"sub-1", "sub-2"}, g.Environments())
	assert.False(t, g.CanSubmit())
	assert.Contains(t, g.Message(), "2 environment(s)")
}

func TestGate_TransientFailure(t *testing.T) {
	g := permission.NewGate()
	g.Begin()

	state := g.Fail(errors.New("connection reset by peer"))
	assert.Equal(t, permission.StateError, state)
	assert.Equal(t, permission.GenericErrorMessage, g.Message())
	assert.NotContains(t, g.Message(), "connection reset")
	assert.Empty(t, g.Environments())
	assert.True(t, g.CanSubmit())
}

func TestGate_Recheck(t *testing.T) {
	g := permission.NewGate()
	g.Fail(&service.AccessDeniedError{Environments: []string{"sub-1"}})

	require.NoError(t, g.Recheck())
	assert.Equal(t, permission.StateReady, g.State())
	assert.Empty(t, g.Environments())
}

func TestGate_RecheckOnlyFromNeedsSetup(t *testing.T) {
	for _, setup := range []func(*permission.Gate){
		func(g *permission.Gate) {},
		func(g *permission.Gate) { g.Succeed() },
		func(g *permission.Gate) { g.Fail(errors.New("boom")) },
	} {
		g := permission.NewGate()
		setup(g)
		before := g.State()
		assert.ErrorIs(t, g.Recheck(), permission.ErrInvalidTransition)
		assert.Equal(t, before, g.State())
	}
}

func TestGate_EnvironmentsAreCopied(t *testing.T) {
	envs := []string{"sub-1"}
	g := permission.NewGate()
	g.RequireSetup(envs)
	envs[0] = "changed"

	got := g.Environments()
	assert.Equal(t, []string{"sub-1"}, got)
	got[0] = "changed again"
	assert.Equal(t, []string{"sub-1"}, g.Environments())
}

func TestGate_BeginClearsPreviousOutcome(t *testing.T) {
	g := permission.NewGate()
	g.Fail(errors.New("boom"))
	g.Begin()
	assert.Equal(t, permission.StateChecking, g.State())
	assert.Empty(t, g.Message())
}
