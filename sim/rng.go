package sim

import (
	"hash/fnv"
	"math/rand"
)

// CampaignKey uniquely identifies a reproducible campaign run.
// Two campaigns with the same CampaignKey and identical configuration
// MUST produce bit-for-bit identical tick streams.
type CampaignKey int64

// RNG subsystem names. Each subsystem draws from its own deterministic
// stream so adding randomness to one subsystem cannot shift another.
const (
	// SubsystemEconomy drives monthly treasury/manpower drift.
	SubsystemEconomy = "economy"
	// SubsystemPolicy drives the scripted AI's command choices.
	SubsystemPolicy = "policy"
	// SubsystemWorld drives world setup (starting facts per country).
	SubsystemWorld = "world"
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, derived as masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        CampaignKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a CampaignKey.
func NewPartitionedRNG(key CampaignKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the CampaignKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() CampaignKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
