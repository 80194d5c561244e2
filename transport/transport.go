// Package transport provides the serial link to the Bluetooth module.
package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds every read on the link.
const DefaultReadTimeout = 3 * time.Second

// Transport is the framed byte link the upgrade session drives. ReadExact
// blocks until n bytes arrive or the read timeout expires, returning
// whatever was received; callers that need the full count treat a short
// result as failure.
type Transport interface {
	Write(p []byte) error
	ReadExact(n int) ([]byte, error)
	ReadLine() ([]byte, error)
	Reopen(baud int) error
	Close() error
}

// SerialPort is a Transport over a local serial device, 8-N-1. Reopen
// closes the current handle before opening the device again at the new
// baud, so at most one handle is live at a time.
type SerialPort struct {
	device  string
	timeout time.Duration
	port    serial.Port
}

// OpenSerial opens the serial device at the given baud rate with the
// default read timeout.
func OpenSerial(device string, baud int) (*SerialPort, error) {
	s := &SerialPort{
		device:  device,
		timeout: DefaultReadTimeout,
	}
	port, err := s.open(baud)
	if err != nil {
		return nil, err
	}
	s.port = port
	return s, nil
}

func (s *SerialPort) open(baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.device, err)
	}
	if err := port.SetReadTimeout(s.timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", s.device, err)
	}
	return port, nil
}

// Write writes p to the port in full.
func (s *SerialPort) Write(p []byte) error {
	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return fmt.Errorf("write %s: %w", s.device, err)
		}
		p = p[n:]
	}
	return nil
}

// ReadExact reads up to n bytes, stopping early when a read times out.
func (s *SerialPort) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	total := 0
	for total < n {
		r, err := s.port.Read(buf[total:])
		if err != nil {
			return buf[:total], fmt.Errorf("read %s: %w", s.device, err)
		}
		if r == 0 {
			// Timeout with no further data.
			break
		}
		total += r
	}
	return buf[:total], nil
}

// ReadLine reads bytes up to and including a newline, or until the read
// timeout expires. Used to drain the module's boot banner.
func (s *SerialPort) ReadLine() ([]byte, error) {
	var line []byte
	one := make([]byte, 1)
	for {
		r, err := s.port.Read(one)
		if err != nil {
			return line, fmt.Errorf("read %s: %w", s.device, err)
		}
		if r == 0 {
			return line, nil
		}
		line = append(line, one[0])
		if one[0] == '\n' {
			return line, nil
		}
	}
}

// Reopen closes the port and reopens the same device at the new baud rate.
// The port is fully open on return; commands may be issued immediately.
func (s *SerialPort) Reopen(baud int) error {
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.device, err)
	}
	port, err := s.open(baud)
	if err != nil {
		return err
	}
	s.port = port
	return nil
}

// SendBreak asserts a break condition on the line for the given duration.
func (s *SerialPort) SendBreak(d time.Duration) error {
	if err := s.port.Break(d); err != nil {
		return fmt.Errorf("break %s: %w", s.device, err)
	}
	return nil
}

// FlushInput discards any pending unread input.
func (s *SerialPort) FlushInput() error {
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("flush %s: %w", s.device, err)
	}
	return nil
}

// Close releases the port.
func (s *SerialPort) Close() error {
	return s.port.Close()
}
