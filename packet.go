package swp

import (
	"errors"
	"fmt"
)

var errMalformedFrame = errors.New("malformed frame")

type dataPacket struct {
	buffer []byte
}

func (pck *dataPacket) sequenceNumber() byte {
	return pck.buffer[sequenceNumberOffset]
}

func (pck *dataPacket) payload() []byte {
	return pck.buffer[payloadOffset:]
}

func createDataPacket(sequenceNumber byte, payload []byte) *dataPacket {
	if len(payload) != dataBytes {
		panic("payload must be exactly 31 bytes")
	}
	buffer := make([]byte, dataPacketLength)
	buffer[sequenceNumberOffset] = sequenceNumber
	copy(buffer[payloadOffset:], payload)
	return &dataPacket{buffer: buffer}
}

func parseDataPacket(buffer []byte) (*dataPacket, error) {
	if len(buffer) != dataPacketLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errMalformedFrame, dataPacketLength, len(buffer))
	}
	return &dataPacket{buffer: buffer}, nil
}

// bestEffortSequenceNumber recovers a sequence number from a malformed frame
// so the receiver can still address its diagnostic ack. Transfer state is
// never derived from it.
func bestEffortSequenceNumber(buffer []byte) byte {
	if len(buffer) >= 1 {
		return buffer[0]
	}
	return 0
}

type ackPacket struct {
	buffer []byte
}

func (ack *ackPacket) sequenceNumber() byte {
	return ack.buffer[sequenceNumberOffset]
}

func (ack *ackPacket) status() ackStatus {
	return ackStatus(ack.buffer[statusOffset])
}

func createAckPacket(sequenceNumber byte, status ackStatus) *ackPacket {
	return &ackPacket{buffer: []byte{sequenceNumber, byte(status)}}
}

func parseAckPacket(buffer []byte) (*ackPacket, error) {
	if len(buffer) != ackLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errMalformedFrame, ackLength, len(buffer))
	}
	return &ackPacket{buffer: buffer}, nil
}
