package swp

import (
	"io"
	"time"
)

type timeoutError struct{}

func (err *timeoutError) Error() string { return "read deadline exceeded" }

func (err *timeoutError) Timeout() bool { return true }

func (err *timeoutError) Temporary() bool { return true }

// channelConnector is an in-memory Connector backed by a pair of channels,
// used to run both endpoints inside one test process.
type channelConnector struct {
	in       chan []byte
	out      chan []byte
	deadline time.Time
}

func newChannelConnectorPair() (*channelConnector, *channelConnector) {
	endpoint1, endpoint2 := make(chan []byte, 100), make(chan []byte, 100)
	return &channelConnector{in: endpoint1, out: endpoint2},
		&channelConnector{in: endpoint2, out: endpoint1}
}

func (connector *channelConnector) Open() error {
	return nil
}

func (connector *channelConnector) Close() error {
	close(connector.out)
	return nil
}

func (connector *channelConnector) Write(buffer []byte) (int, error) {
	message := make([]byte, len(buffer))
	copy(message, buffer)
	connector.out <- message
	return len(buffer), nil
}

func (connector *channelConnector) Read(buffer []byte) (int, error) {
	if connector.deadline.IsZero() {
		message, ok := <-connector.in
		if !ok {
			return 0, io.EOF
		}
		return copy(buffer, message), nil
	}
	select {
	case message, ok := <-connector.in:
		if !ok {
			return 0, io.EOF
		}
		return copy(buffer, message), nil
	case <-time.After(time.Until(connector.deadline)):
		return 0, &timeoutError{}
	}
}

func (connector *channelConnector) SetReadDeadline(t time.Time) error {
	connector.deadline = t
	return nil
}

// scriptedGenerator replays fixed random decisions. Exhausted scripts fall
// back to 0.99 for floats (deliver unless loss is forced to 1) and the lower
// bound for integers.
type scriptedGenerator struct {
	floats     []float64
	ints       []int
	floatIndex int
	intIndex   int
}

func (gen *scriptedGenerator) Float64() float64 {
	if gen.floatIndex >= len(gen.floats) {
		return 0.99
	}
	value := gen.floats[gen.floatIndex]
	gen.floatIndex++
	return value
}

func (gen *scriptedGenerator) IntBetween(min, max int) int {
	if gen.intIndex >= len(gen.ints) {
		return min
	}
	value := gen.ints[gen.intIndex]
	gen.intIndex++
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// newTestPolicy builds a channel policy with sleeping disabled so tests run
// at full speed.
func newTestPolicy(lossProbability float64, random RandomGenerator) *ChannelPolicy {
	policy := NewChannelPolicy(lossProbability, 0, 0, random)
	policy.sleep = func(time.Duration) {}
	return policy
}
