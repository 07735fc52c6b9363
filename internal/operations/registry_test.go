package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabprofile/internal/operations"
)

func TestRegistry(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Equal(t, 0, registry.Count())
	steps := registry.List()
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}

func TestRegistryRegister(t *testing.T) {
	registry := operations.NewRegistry()

	step1 := newFakeStep("step1", operations.StateLoaded)
	step2 := newFakeStep("step2", operations.StateHeadersExtracted)
	step3 := newFakeStep("step3", operations.StateDone)

	require.NoError(t, registry.Register(step1))
	require.NoError(t, registry.Register(step2))
	require.NoError(t, registry.Register(step3))

	assert.Equal(t, 3, registry.Count())
	assert.Equal(t, []string{"step1", "step2", "step3"}, registry.ListIDs())
	assert.True(t, registry.Has("step2"))
	assert.False(t, registry.Has("missing"))

	got, err := registry.Get("step1")
	require.NoError(t, err)
	assert.Same(t, step1, got)

	_, err = registry.Get("missing")
	assert.Error(t, err)
}

func TestRegistryRegisterErrors(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(newFakeStep("", operations.StateDone)))

	require.NoError(t, registry.Register(newFakeStep("dup", operations.StateDone)))
	err := registry.Register(newFakeStep("dup", operations.StateDone))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefaultRegistryOrder(t *testing.T) {
	registry, err := operations.NewDefaultRegistry(nil, analyticsOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		operations.StepIDLoad,
		operations.StepIDExtractHeaders,
		operations.StepIDNormalizeHeaders,
		operations.StepIDComputeStatistics,
	}, registry.ListIDs())
}
