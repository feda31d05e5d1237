package swp

import "time"

const (
	dataPacketLength = 32
	dataBytes        = dataPacketLength - 1
	ackLength        = 2
	lengthFieldSize  = 4
	firstChunkBytes  = dataBytes - lengthFieldSize
)

const (
	sequenceNumberOffset = 0
	payloadOffset        = 1
	statusOffset         = 1
)

type ackStatus byte

const (
	statusOK ackStatus = iota
	statusDuplicate
	statusBadLength
)

func (status ackStatus) String() string {
	switch status {
	case statusOK:
		return "OK"
	case statusDuplicate:
		return "DUPLICATE"
	case statusBadLength:
		return "BAD_LENGTH"
	}
	return "UNKNOWN"
}

const (
	ackReadBufferSize  = 1024
	dataReadBufferSize = 4096
)

const (
	defaultRetransmissionTimeout = 1000 * time.Millisecond
	defaultMaxRetries            = 5
	defaultSeed                  = 12
)
