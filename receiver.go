package swp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// transferSession tracks one reconstruction in progress. The duplicate check
// is bare equality against the last delivered sequence number; that is only
// sound because the calling discipline is strict stop-and-wait with a single
// packet in flight and no reordering. It must not be widened into a
// sliding-window check without changing the wire format.
type transferSession struct {
	totalLength   uint32
	lengthKnown   bool
	bytesWritten  uint32
	lastDelivered byte
	hasDelivered  bool
}

func (session *transferSession) complete() bool {
	return session.lengthKnown && session.bytesWritten >= session.totalLength
}

func (session *transferSession) remaining() uint32 {
	if session.bytesWritten >= session.totalLength {
		return 0
	}
	return session.totalLength - session.bytesWritten
}

// SessionSummary reports the end-of-run counters for one receiver session.
type SessionSummary struct {
	SessionID       uuid.UUID
	TotalLength     uint32
	BytesWritten    uint32
	PacketsAccepted int
	Duplicates      int
	MalformedFrames int
}

// Receiver consumes data packets from the channel, appends the reconstructed
// stream to its output in arrival order, and answers every datagram with an
// ack routed through the channel policy.
type Receiver struct {
	connector Connector
	policy    *ChannelPolicy
	out       io.Writer
	log       zerolog.Logger
	session   transferSession
}

func NewReceiver(connector Connector, policy *ChannelPolicy, out io.Writer, log zerolog.Logger) *Receiver {
	return &Receiver{
		connector: connector,
		policy:    policy,
		out:       out,
		log:       log,
	}
}

// Receive blocks until the transfer is complete and the completing packet's
// ack actually reached the transport. If that final ack is suppressed by the
// loss policy the receiver keeps listening, so a retransmission can be
// answered with DUPLICATE and a fresh ack attempt; the sender has no other
// way to learn the transfer succeeded.
func (rcv *Receiver) Receive() (*SessionSummary, error) {
	summary := &SessionSummary{SessionID: uuid.New()}
	log := rcv.log.With().Str("session", summary.SessionID.String()).Logger()

	buffer := make([]byte, dataReadBufferSize)
	for {
		n, err := rcv.connector.Read(buffer)
		if err != nil {
			rcv.fillSummary(summary)
			return summary, fmt.Errorf("read data packet: %w", err)
		}
		done, ackTransmitted, err := rcv.handleDatagram(log, summary, buffer[:n])
		if err != nil {
			rcv.fillSummary(summary)
			return summary, err
		}
		if done && ackTransmitted {
			rcv.fillSummary(summary)
			log.Info().Uint32("bytes_written", summary.BytesWritten).
				Uint32("total_length", summary.TotalLength).
				Int("packets_accepted", summary.PacketsAccepted).
				Msg("transfer complete")
			return summary, nil
		}
	}
}

func (rcv *Receiver) handleDatagram(log zerolog.Logger, summary *SessionSummary, datagram []byte) (bool, bool, error) {
	packet, err := parseDataPacket(datagram)
	if err != nil {
		summary.MalformedFrames++
		sequenceNumber := bestEffortSequenceNumber(datagram)
		log.Warn().Int("length", len(datagram)).Uint8("seq", sequenceNumber).
			Msg("malformed frame")
		_, err := rcv.writeAck(log, sequenceNumber, statusBadLength)
		return false, false, err
	}

	sequenceNumber := packet.sequenceNumber()
	if rcv.session.hasDelivered && sequenceNumber == rcv.session.lastDelivered {
		summary.Duplicates++
		log.Debug().Uint8("seq", sequenceNumber).Msg("duplicate packet")
		transmitted, err := rcv.writeAck(log, sequenceNumber, statusDuplicate)
		return rcv.session.complete(), transmitted, err
	}

	if err := rcv.acceptPayload(log, summary, sequenceNumber, packet.payload()); err != nil {
		return false, false, err
	}
	transmitted, err := rcv.writeAck(log, sequenceNumber, statusOK)
	return rcv.session.complete(), transmitted, err
}

func (rcv *Receiver) acceptPayload(log zerolog.Logger, summary *SessionSummary, sequenceNumber byte, payload []byte) error {
	candidate := payload
	if !rcv.session.lengthKnown {
		rcv.session.totalLength = binary.LittleEndian.Uint32(payload[:lengthFieldSize])
		rcv.session.lengthKnown = true
		candidate = payload[lengthFieldSize:]
		log.Info().Uint32("total_length", rcv.session.totalLength).Msg("transfer started")
	}

	toWrite := candidate[:min(uint32(len(candidate)), rcv.session.remaining())]
	if len(toWrite) > 0 {
		if _, err := rcv.out.Write(toWrite); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	rcv.session.bytesWritten += uint32(len(toWrite))
	rcv.session.lastDelivered = sequenceNumber
	rcv.session.hasDelivered = true
	summary.PacketsAccepted++

	log.Debug().Uint8("seq", sequenceNumber).Int("wrote", len(toWrite)).
		Uint32("bytes_written", rcv.session.bytesWritten).
		Uint32("total_length", rcv.session.totalLength).
		Msg("packet accepted")
	return nil
}

func (rcv *Receiver) writeAck(log zerolog.Logger, sequenceNumber byte, status ackStatus) (bool, error) {
	ack := createAckPacket(sequenceNumber, status)
	transmitted, err := rcv.policy.Transmit(rcv.connector, ack.buffer)
	if err != nil {
		return false, fmt.Errorf("send ack: %w", err)
	}
	event := log.Debug().Uint8("seq", sequenceNumber).Stringer("status", status)
	if transmitted {
		event.Msg("ack sent")
	} else {
		event.Msg("ack dropped by channel")
	}
	return transmitted, nil
}

func (rcv *Receiver) fillSummary(summary *SessionSummary) {
	summary.TotalLength = rcv.session.totalLength
	summary.BytesWritten = rcv.session.bytesWritten
}
