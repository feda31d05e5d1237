package swp

import (
	"fmt"
	"math/rand"
	"time"
)

// RandomGenerator supplies the two random decisions the channel policy
// needs. Both endpoints keep a single seeded generator so a fixed seed
// reproduces an identical drop/delay sequence across a full run.
type RandomGenerator interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntBetween returns a uniform value in [min, max], inclusive on both ends.
	IntBetween(min, max int) int
}

type seededGenerator struct {
	random *rand.Rand
}

func NewSeededGenerator(seed int64) RandomGenerator {
	return &seededGenerator{random: rand.New(rand.NewSource(seed))}
}

func (gen *seededGenerator) Float64() float64 {
	return gen.random.Float64()
}

func (gen *seededGenerator) IntBetween(min, max int) int {
	return min + gen.random.Intn(max-min+1)
}

// ChannelPolicy simulates an unreliable link. Each outbound message is
// either suppressed entirely with the configured loss probability, or
// delayed by a uniform duration within the configured bounds and then
// written unmodified. The drop decision is drawn first; the delay is only
// drawn for messages that survive, which keeps the generator sequence
// stable for regression runs.
type ChannelPolicy struct {
	lossProbability float64
	delayMin        time.Duration
	delayMax        time.Duration
	random          RandomGenerator
	sleep           func(time.Duration)
}

func NewChannelPolicy(lossProbability float64, delayMin, delayMax time.Duration, random RandomGenerator) *ChannelPolicy {
	return &ChannelPolicy{
		lossProbability: lossProbability,
		delayMin:        delayMin,
		delayMax:        delayMax,
		random:          random,
		sleep:           time.Sleep,
	}
}

// Transmit applies the loss/delay decision to one outbound message and
// reports whether the message actually reached the transport.
func (policy *ChannelPolicy) Transmit(connector Connector, buffer []byte) (bool, error) {
	if policy.random.Float64() < policy.lossProbability {
		return false, nil
	}
	policy.sleep(policy.drawDelay())
	if _, err := connector.Write(buffer); err != nil {
		return false, fmt.Errorf("write to transport: %w", err)
	}
	return true, nil
}

func (policy *ChannelPolicy) drawDelay() time.Duration {
	minMs := int(policy.delayMin / time.Millisecond)
	maxMs := int(policy.delayMax / time.Millisecond)
	return time.Duration(policy.random.IntBetween(minMs, maxMs)) * time.Millisecond
}
