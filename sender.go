package swp

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RetriesExhaustedError is the bounded-failure outcome: one chunk ran out of
// its retry budget and the transfer stopped without attempting later chunks.
type RetriesExhaustedError struct {
	Chunk    int
	Attempts int
}

func (err *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("chunk %d not acknowledged after %d attempts", err.Chunk, err.Attempts)
}

// TransferSummary reports the end-of-run counters for one sender transfer.
type TransferSummary struct {
	TransferID      uuid.UUID
	ChunksAttempted int
	ChunksDelivered int
}

// Sender drives the stop-and-wait send loop: one chunk at a time, one packet
// in flight, alternating single-bit sequence numbers. A chunk is only ever
// advanced past after a matching OK or DUPLICATE ack, so the 0/1 sequence
// scheme stays unambiguous.
type Sender struct {
	connector  Connector
	policy     *ChannelPolicy
	timeout    time.Duration
	maxRetries int
	log        zerolog.Logger
}

func NewSender(connector Connector, policy *ChannelPolicy, timeout time.Duration, maxRetries int, log zerolog.Logger) *Sender {
	return &Sender{
		connector:  connector,
		policy:     policy,
		timeout:    timeout,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Transfer sends every chunk of the stream and blocks until the transfer
// concludes. On a retry-budget exhaustion it returns the partial summary
// together with a *RetriesExhaustedError; no further chunks are attempted.
func (snd *Sender) Transfer(chunks *Chunker) (*TransferSummary, error) {
	summary := &TransferSummary{TransferID: uuid.New()}
	log := snd.log.With().Str("transfer", summary.TransferID.String()).Logger()

	var sequenceNumber byte
	for chunkIndex := 0; ; chunkIndex++ {
		chunk, err := chunks.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("chunk %d: %w", chunkIndex, err)
		}
		summary.ChunksAttempted++
		if err := snd.sendWithRetries(log, sequenceNumber, chunk, chunkIndex); err != nil {
			log.Error().Err(err).
				Int("chunks_attempted", summary.ChunksAttempted).
				Int("chunks_delivered", summary.ChunksDelivered).
				Msg("transfer aborted")
			return summary, err
		}
		summary.ChunksDelivered++
		sequenceNumber ^= 1
	}

	log.Info().
		Int("chunks_attempted", summary.ChunksAttempted).
		Int("chunks_delivered", summary.ChunksDelivered).
		Msg("transfer complete")
	return summary, nil
}

func (snd *Sender) sendWithRetries(log zerolog.Logger, sequenceNumber byte, chunk []byte, chunkIndex int) error {
	packet := createDataPacket(sequenceNumber, chunk)
	for attempt := 1; attempt <= snd.maxRetries; attempt++ {
		transmitted, err := snd.policy.Transmit(snd.connector, packet.buffer)
		if err != nil {
			return fmt.Errorf("chunk %d attempt %d: %w", chunkIndex, attempt, err)
		}
		event := log.Debug().Uint8("seq", sequenceNumber).Int("attempt", attempt)
		if transmitted {
			event.Msg("data packet sent")
		} else {
			event.Msg("data packet dropped by channel")
		}

		status, acked, err := snd.awaitAck(log, sequenceNumber)
		if err != nil {
			return fmt.Errorf("chunk %d attempt %d: %w", chunkIndex, attempt, err)
		}
		if !acked {
			log.Debug().Uint8("seq", sequenceNumber).Int("attempt", attempt).Msg("ack timeout")
			continue
		}
		switch status {
		case statusOK, statusDuplicate:
			log.Info().Uint8("seq", sequenceNumber).Int("attempt", attempt).
				Stringer("status", status).Msg("chunk delivered")
			return nil
		default:
			log.Warn().Uint8("seq", sequenceNumber).Int("attempt", attempt).
				Stringer("status", status).Msg("receiver rejected frame")
		}
	}
	return &RetriesExhaustedError{Chunk: chunkIndex, Attempts: snd.maxRetries}
}

// awaitAck waits for an ack matching the outstanding sequence number until
// the per-attempt deadline expires. Acks of the wrong size are noise and
// acks for another sequence number are stale replies to an earlier delivery;
// both are discarded without resetting the deadline.
func (snd *Sender) awaitAck(log zerolog.Logger, sequenceNumber byte) (ackStatus, bool, error) {
	deadline := time.Now().Add(snd.timeout)
	if err := snd.connector.SetReadDeadline(deadline); err != nil {
		return 0, false, fmt.Errorf("set ack deadline: %w", err)
	}
	buffer := make([]byte, ackReadBufferSize)
	for {
		n, err := snd.connector.Read(buffer)
		if err != nil {
			if isTimeout(err) {
				return 0, false, nil
			}
			return 0, false, fmt.Errorf("read ack: %w", err)
		}
		ack, err := parseAckPacket(buffer[:n])
		if err != nil {
			continue
		}
		if ack.sequenceNumber() != sequenceNumber {
			log.Debug().Uint8("seq", sequenceNumber).Uint8("ack_seq", ack.sequenceNumber()).
				Msg("stale ack ignored")
			continue
		}
		return ack.status(), true, nil
	}
}
