package swp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ChannelPolicyTestSuite struct {
	suite.Suite
}

func (suite *ChannelPolicyTestSuite) TestSeededGeneratorIsDeterministic() {
	first, second := NewSeededGenerator(12), NewSeededGenerator(12)
	for i := 0; i < 100; i++ {
		suite.Equal(first.Float64(), second.Float64())
		suite.Equal(first.IntBetween(300, 400), second.IntBetween(300, 400))
	}
}

func (suite *ChannelPolicyTestSuite) TestIntBetweenIsInclusive() {
	random := NewSeededGenerator(1)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		value := random.IntBetween(25, 28)
		suite.GreaterOrEqual(value, 25)
		suite.LessOrEqual(value, 28)
		seen[value] = true
	}
	suite.Len(seen, 4)
}

func (suite *ChannelPolicyTestSuite) TestForcedLossSuppressesEverySend() {
	connector, remote := newChannelConnectorPair()
	policy := newTestPolicy(1, NewSeededGenerator(12))
	for i := 0; i < 20; i++ {
		transmitted, err := policy.Transmit(connector, []byte{1, 2})
		suite.NoError(err)
		suite.False(transmitted)
	}
	suite.Empty(remote.in)
}

func (suite *ChannelPolicyTestSuite) TestZeroLossDeliversEverySend() {
	connector, remote := newChannelConnectorPair()
	policy := newTestPolicy(0, NewSeededGenerator(12))
	for i := 0; i < 20; i++ {
		transmitted, err := policy.Transmit(connector, []byte{1, 2})
		suite.NoError(err)
		suite.True(transmitted)
	}
	suite.Len(remote.in, 20)
}

func (suite *ChannelPolicyTestSuite) TestDelayDrawnOnlyForDeliveredSends() {
	connector, _ := newChannelConnectorPair()
	random := &scriptedGenerator{floats: []float64{0.1, 0.9}, ints: []int{350}}
	policy := NewChannelPolicy(0.5, 300*time.Millisecond, 400*time.Millisecond, random)

	var slept []time.Duration
	policy.sleep = func(d time.Duration) { slept = append(slept, d) }

	transmitted, err := policy.Transmit(connector, []byte{1})
	suite.NoError(err)
	suite.False(transmitted)
	suite.Empty(slept)

	transmitted, err = policy.Transmit(connector, []byte{1})
	suite.NoError(err)
	suite.True(transmitted)
	suite.Equal([]time.Duration{350 * time.Millisecond}, slept)
}

func (suite *ChannelPolicyTestSuite) TestIdenticalDecisionSequenceForSameSeed() {
	decisions := func(seed int64) []bool {
		connector, _ := newChannelConnectorPair()
		policy := newTestPolicy(0.5, NewSeededGenerator(seed))
		var result []bool
		for i := 0; i < 50; i++ {
			transmitted, err := policy.Transmit(connector, []byte{1})
			suite.NoError(err)
			result = append(result, transmitted)
		}
		return result
	}
	suite.Equal(decisions(12), decisions(12))
}

func TestChannelPolicy(t *testing.T) {
	suite.Run(t, new(ChannelPolicyTestSuite))
}
