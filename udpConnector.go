package swp

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// UDPConnector owns one dialed socket for outbound messages and one bound
// socket for inbound messages. The sender dials the receiver's data endpoint
// and binds its ack endpoint; the receiver dials the sender's ack endpoint
// and binds its data endpoint.
type UDPConnector struct {
	remoteHost  string
	remotePort  int
	localHost   string
	localPort   int
	udpSender   *net.UDPConn
	udpReceiver *net.UDPConn
}

func NewUDPConnector(remoteHost string, remotePort int, localHost string, localPort int) *UDPConnector {
	return &UDPConnector{
		remoteHost: remoteHost,
		remotePort: remotePort,
		localHost:  localHost,
		localPort:  localPort,
	}
}

func createUDPAddress(host string, port int) (*net.UDPAddr, error) {
	address := host + ":" + strconv.Itoa(port)
	udpAddress, err := net.ResolveUDPAddr("udp4", address)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", address, err)
	}
	return udpAddress, nil
}

func (connector *UDPConnector) Open() error {
	remoteAddress, err := createUDPAddress(connector.remoteHost, connector.remotePort)
	if err != nil {
		return err
	}
	localAddress, err := createUDPAddress(connector.localHost, connector.localPort)
	if err != nil {
		return err
	}
	connector.udpSender, err = net.DialUDP("udp4", nil, remoteAddress)
	if err != nil {
		return fmt.Errorf("dial %v: %w", remoteAddress, err)
	}
	connector.udpReceiver, err = net.ListenUDP("udp4", localAddress)
	if err != nil {
		return fmt.Errorf("listen %v: %w", localAddress, err)
	}
	return nil
}

func (connector *UDPConnector) Close() error {
	senderError := connector.udpSender.Close()
	receiverError := connector.udpReceiver.Close()
	if senderError != nil {
		return senderError
	}
	return receiverError
}

func (connector *UDPConnector) Write(buffer []byte) (int, error) {
	return connector.udpSender.Write(buffer)
}

func (connector *UDPConnector) Read(buffer []byte) (int, error) {
	return connector.udpReceiver.Read(buffer)
}

func (connector *UDPConnector) SetReadDeadline(t time.Time) error {
	return connector.udpReceiver.SetReadDeadline(t)
}
