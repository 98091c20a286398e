package sim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuenet/queuenet/sim/variate"
)

// TestExampleConfigs_CallCenter verifies that call-center.yaml loads as a
// single blocking pool and runs to its target.
func TestExampleConfigs_CallCenter(t *testing.T) {
	// GIVEN the call-center.yaml example network
	cfg, err := LoadConfig(filepath.Join("..", "examples", "call-center.yaml"))
	require.NoError(t, err, "failed to load call-center.yaml")

	// THEN it is one blocking station with three servers
	require.Len(t, cfg.Stations, 1)
	assert.Equal(t, PolicyBlock, cfg.Stations[0].Policy)
	assert.Equal(t, 3, cfg.Stations[0].Servers)

	// WHEN it runs
	res := mustRun(t, cfg, variate.NewRandSource(42))

	// THEN every loss is a block at the agent pool, near Erlang-B(3, 2)
	assert.Equal(t, 10000, res.Processed)
	assert.Equal(t, res.Rejected(), res.Rejection(ReasonBlocked, "agents"))
	assert.InDelta(t, 0.2105, res.RejectionRate(), 0.03)
}

// TestExampleConfigs_Clinic verifies that clinic.yaml drains every patient
// already inside once the target is met.
func TestExampleConfigs_Clinic(t *testing.T) {
	// GIVEN the clinic.yaml example network
	cfg, err := LoadConfig(filepath.Join("..", "examples", "clinic.yaml"))
	require.NoError(t, err, "failed to load clinic.yaml")
	assert.Equal(t, CompletionDrain, cfg.EffectiveCompletion())
	assert.Equal(t, UnboundedArrivals, cfg.EffectiveArrivalLimit())

	// WHEN it runs
	res := mustRun(t, cfg, variate.NewRandSource(42))

	// THEN nobody is left inside and the counts reconcile
	assert.Equal(t, 0, res.InFlight)
	assert.GreaterOrEqual(t, res.Processed, 500)
	assert.Equal(t, res.Arrived.Groups, res.Processed)
	assert.Equal(t, res.Processed, res.Succeeded.Groups+res.Rejected().Groups)
	assert.Positive(t, res.Feedbacks)
	assert.Zero(t, res.Rejection(ReasonRejected, "doctors").Groups)
}
