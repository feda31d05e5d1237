package swp

import (
	"errors"
	"net"
	"time"
)

// Connector is one endpoint's pair of unidirectional datagram channels:
// writes go to the peer, reads come from the locally bound endpoint.
type Connector interface {
	Open() error
	Close() error
	Write(buffer []byte) (int, error)
	Read(buffer []byte) (int, error)
	SetReadDeadline(t time.Time) error
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
