package variate

import (
	"fmt"
	"hash/fnv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

// SubsystemKernel is the stream consumed by a single simulation run.
// Uses the master seed directly so `run --seed N` and replication 0 of
// `replicate --seed N` agree.
const SubsystemKernel = "kernel"

// SubsystemReplication returns the subsystem name for replication n.
// Replication 0 maps to SubsystemKernel.
func SubsystemReplication(n int) string {
	if n == 0 {
		return SubsystemKernel
	}
	return fmt.Sprintf("replication_%d", n)
}

// === PartitionedRNG ===

// PartitionedRNG hands out deterministic, isolated sources per subsystem.
//
// Derivation formula:
//   - For SubsystemKernel: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Derive all sources from one goroutine, then
// hand each source to the goroutine that owns it.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*RandSource
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*RandSource),
	}
}

// ForSubsystem returns the source for the named subsystem.
// The same subsystem name always returns the same *RandSource instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *RandSource {
	if src, ok := p.subsystems[name]; ok {
		return src
	}

	var derivedSeed int64
	if name == SubsystemKernel {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	src := NewRandSource(uint64(derivedSeed))
	p.subsystems[name] = src
	return src
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
