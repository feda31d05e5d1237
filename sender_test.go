package swp

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type SenderTestSuite struct {
	suite.Suite
	alpha, beta *channelConnector
}

func (suite *SenderTestSuite) SetupTest() {
	suite.alpha, suite.beta = newChannelConnectorPair()
}

func (suite *SenderTestSuite) newSender(policy *ChannelPolicy, timeout time.Duration, maxRetries int) *Sender {
	return NewSender(suite.alpha, policy, timeout, maxRetries, zerolog.Nop())
}

func (suite *SenderTestSuite) ack(sequenceNumber byte, status ackStatus) {
	_, err := suite.beta.Write(createAckPacket(sequenceNumber, status).buffer)
	suite.NoError(err)
}

func (suite *SenderTestSuite) TestDeliverSingleChunk() {
	snd := suite.newSender(newTestPolicy(0, NewSeededGenerator(12)), 50*time.Millisecond, 5)
	suite.ack(0, statusOK)

	summary, err := snd.Transfer(NewChunker(bytes.NewReader([]byte("hello")), 5))
	suite.NoError(err)
	suite.Equal(1, summary.ChunksAttempted)
	suite.Equal(1, summary.ChunksDelivered)

	sent := <-suite.beta.in
	suite.Len(sent, dataPacketLength)
	suite.Equal(byte(0), sent[0])
}

func (suite *SenderTestSuite) TestDuplicateAckCountsAsDelivered() {
	snd := suite.newSender(newTestPolicy(0, NewSeededGenerator(12)), 50*time.Millisecond, 1)
	suite.ack(0, statusDuplicate)

	summary, err := snd.Transfer(NewChunker(bytes.NewReader([]byte("hello")), 5))
	suite.NoError(err)
	suite.Equal(1, summary.ChunksDelivered)
}

func (suite *SenderTestSuite) TestStaleAckDoesNotConsumeAttempt() {
	snd := suite.newSender(newTestPolicy(0, NewSeededGenerator(12)), 100*time.Millisecond, 1)
	suite.ack(1, statusOK)
	suite.ack(0, statusOK)

	summary, err := snd.Transfer(NewChunker(bytes.NewReader([]byte("hello")), 5))
	suite.NoError(err)
	suite.Equal(1, summary.ChunksDelivered)
}

func (suite *SenderTestSuite) TestNoiseAckIgnored() {
	snd := suite.newSender(newTestPolicy(0, NewSeededGenerator(12)), 100*time.Millisecond, 1)
	_, err := suite.beta.Write([]byte{0, 0, 0})
	suite.NoError(err)
	suite.ack(0, statusOK)

	summary, err := snd.Transfer(NewChunker(bytes.NewReader([]byte("hello")), 5))
	suite.NoError(err)
	suite.Equal(1, summary.ChunksDelivered)
}

func (suite *SenderTestSuite) TestBadLengthAckConsumesAttempt() {
	snd := suite.newSender(newTestPolicy(0, NewSeededGenerator(12)), 50*time.Millisecond, 2)
	suite.ack(0, statusBadLength)
	suite.ack(0, statusOK)

	summary, err := snd.Transfer(NewChunker(bytes.NewReader([]byte("hello")), 5))
	suite.NoError(err)
	suite.Equal(1, summary.ChunksDelivered)
}

func (suite *SenderTestSuite) TestBadLengthAcksExhaustRetries() {
	snd := suite.newSender(newTestPolicy(0, NewSeededGenerator(12)), 50*time.Millisecond, 1)
	suite.ack(0, statusBadLength)

	_, err := snd.Transfer(NewChunker(bytes.NewReader([]byte("hello")), 5))
	var exhausted *RetriesExhaustedError
	suite.ErrorAs(err, &exhausted)
}

func (suite *SenderTestSuite) TestRetriesExhaustedStopsTransfer() {
	snd := suite.newSender(newTestPolicy(1, NewSeededGenerator(12)), 5*time.Millisecond, 3)
	data := bytes.Repeat([]byte{'z'}, 50)

	summary, err := snd.Transfer(NewChunker(bytes.NewReader(data), 50))
	var exhausted *RetriesExhaustedError
	suite.ErrorAs(err, &exhausted)
	suite.Equal(0, exhausted.Chunk)
	suite.Equal(3, exhausted.Attempts)
	suite.Equal(1, summary.ChunksAttempted)
	suite.Equal(0, summary.ChunksDelivered)
	suite.Empty(suite.beta.in)
}

func (suite *SenderTestSuite) TestDropThenRetryDelivers() {
	random := &scriptedGenerator{floats: []float64{0.1, 0.9}}
	policy := newTestPolicy(0.5, random)
	snd := suite.newSender(policy, 10*time.Millisecond, 2)

	received := make(chan []byte, 10)
	go func() {
		buffer := make([]byte, dataReadBufferSize)
		n, err := suite.beta.Read(buffer)
		if err != nil {
			return
		}
		received <- append([]byte(nil), buffer[:n]...)
		_, _ = suite.beta.Write(createAckPacket(buffer[0], statusOK).buffer)
	}()

	summary, err := snd.Transfer(NewChunker(bytes.NewReader([]byte("hello")), 5))
	suite.NoError(err)
	suite.Equal(1, summary.ChunksDelivered)
	suite.Len(received, 1)
	suite.Empty(suite.beta.in)
}

func TestSender(t *testing.T) {
	suite.Run(t, new(SenderTestSuite))
}
