package fup

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

// Transport is the byte link the client talks over. ReadExact blocks until
// n bytes arrive or the link's read timeout expires, in which case it
// returns however many bytes were received.
type Transport interface {
	Write(p []byte) error
	ReadExact(n int) ([]byte, error)
}

// Client implements the bootloader's request/response protocol over a
// Transport. Every command is synchronous: the reply is read in full before
// the next command may be issued. Client performs no retries; a short or
// refused reply is surfaced to the caller and the session must halt.
type Client struct {
	t Transport
}

// NewClient creates a protocol client over the given transport.
func NewClient(t Transport) *Client {
	if t == nil {
		panic("transport cannot be nil")
	}
	return &Client{t: t}
}

// exchange writes a command and reads its fixed-size reply. The reply may
// be shorter than respSize if the transport timed out; size policy is left
// to the per-command methods.
func (c *Client) exchange(name string, cmd []byte, respSize int) ([]byte, error) {
	if err := c.t.Write(cmd); err != nil {
		return nil, fmt.Errorf("%s: write: %w", name, err)
	}
	resp, err := c.t.ReadExact(respSize)
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", name, err)
	}
	return resp, nil
}

// expectAck validates a one-byte ack reply.
func expectAck(name string, resp []byte) error {
	if len(resp) < AckSize {
		return &ShortResponseError{Command: name, Got: len(resp), Want: AckSize}
	}
	if resp[0] != ResponseAck {
		return &NackError{Command: name, Response: resp[0]}
	}
	return nil
}

// Sync sends the sync byte and returns the 14-byte ATS identification
// reply. A truncated reply is returned as a ShortResponseError.
func (c *Client) Sync() ([]byte, error) {
	resp, err := c.exchange("sync", []byte{CmdSync}, ATSSize)
	if err != nil {
		return nil, err
	}
	if len(resp) != ATSSize {
		return resp, &ShortResponseError{Command: "sync", Got: len(resp), Want: ATSSize}
	}
	return resp, nil
}

// Acknowledge acknowledges the ATS reply and expects an ack back.
func (c *Client) Acknowledge() error {
	resp, err := c.exchange("acknowledge", []byte{ResponseAck}, AckSize)
	if err != nil {
		return err
	}
	return expectAck("acknowledge", resp)
}

// PlatformCheck submits the platform ID and returns the raw response byte.
// The caller distinguishes ack (accepted), ResponseError (invalid platform)
// and anything else (fatal).
func (c *Client) PlatformCheck(platformID []byte) (byte, error) {
	cmd := make([]byte, 0, 1+len(platformID))
	cmd = append(cmd, CmdPlatformCheck)
	cmd = append(cmd, platformID...)

	resp, err := c.exchange("platform check", cmd, AckSize)
	if err != nil {
		return 0, err
	}
	if len(resp) < AckSize {
		return 0, &ShortResponseError{Command: "platform check", Got: len(resp), Want: AckSize}
	}
	return resp[0], nil
}

// Version requests the bootloader version and returns the raw 6-byte reply.
func (c *Client) Version() ([]byte, error) {
	resp, err := c.exchange("version", []byte{CmdVersion}, VersionSize)
	if err != nil {
		return nil, err
	}
	if len(resp) != VersionSize {
		return resp, &ShortResponseError{Command: "version", Got: len(resp), Want: VersionSize}
	}
	return resp, nil
}

// ParseVersionMajor extracts the major version from a version reply of the
// form "vX.Y...". The digits between the leading 'v' and the first '.'
// form the major version.
func ParseVersionMajor(reply []byte) (int, error) {
	if len(reply) < 2 || reply[0] != 'v' {
		return 0, &VersionParseError{Reply: reply}
	}
	rest := reply[1:]
	if i := bytes.IndexByte(rest, '.'); i >= 0 {
		rest = rest[:i]
	}
	major, err := strconv.Atoi(string(rest))
	if err != nil {
		return 0, &VersionParseError{Reply: reply}
	}
	return major, nil
}

// SettingSet sets a bootloader option and returns the raw 4-byte reply.
//
// Command layout: 's' OPT_L OPT_H VALUE 0 0 0
func (c *Client) SettingSet(option uint16, value byte) ([]byte, error) {
	cmd := []byte{
		CmdSettingSet,
		byte(option & 0xff),
		byte(option >> 8),
		value,
		0x00,
		0x00,
		0x00,
	}

	resp, err := c.exchange("setting set", cmd, SettingSetSize)
	if err != nil {
		return nil, err
	}
	if len(resp) != SettingSetSize {
		return resp, &ShortResponseError{Command: "setting set", Got: len(resp), Want: SettingSetSize}
	}
	return resp, nil
}

// EraseSector erases the sector at addr. In 64 KiB erase mode blockCode is
// the 4-byte block code appended to the command; a nil blockCode selects
// the legacy form.
//
// Command layout: 'e' ADDR(4) [BLOCK_CODE(4)]
func (c *Client) EraseSector(addr uint32, blockCode []byte) error {
	cmd := make([]byte, 0, 1+4+len(blockCode))
	cmd = append(cmd, CmdEraseSector)

	addrBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(addrBytes, addr)
	cmd = append(cmd, addrBytes...)
	cmd = append(cmd, blockCode...)

	resp, err := c.exchange("erase sector", cmd, AckSize)
	if err != nil {
		return err
	}
	return expectAck("erase sector", resp)
}

// WriteCommand announces a data block of n bytes at addr. Extended mode
// carries a 16-bit little-endian length; the legacy form a single byte.
//
// Command layout: 'w' ADDR(4) LEN(1)  or  'w' ADDR(4) LEN_L LEN_H
func (c *Client) WriteCommand(addr uint32, n int, extended bool) error {
	cmd := make([]byte, 0, 1+4+2)
	cmd = append(cmd, CmdWriteSector)

	addrBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(addrBytes, addr)
	cmd = append(cmd, addrBytes...)

	if extended {
		cmd = append(cmd, byte(n&0xff), byte((n&0xff00)>>8))
	} else {
		cmd = append(cmd, byte(n))
	}

	resp, err := c.exchange("write command", cmd, AckSize)
	if err != nil {
		return err
	}
	return expectAck("write command", resp)
}

// DataSection sends the data block announced by the preceding WriteCommand,
// followed by the low byte of its checksum.
//
// Command layout: 'd' DATA(n) CHECKSUM_LSB
func (c *Client) DataSection(data []byte) error {
	cmd := make([]byte, 0, 1+len(data)+1)
	cmd = append(cmd, CmdDataSection)
	cmd = append(cmd, data...)
	cmd = append(cmd, DataChecksum(data))

	resp, err := c.exchange("data section", cmd, AckSize)
	if err != nil {
		return err
	}
	return expectAck("data section", resp)
}

// Verify asks the bootloader to check size bytes starting at start against
// the untruncated 32-bit checksum.
//
// Command layout: 'v' START(4) SIZE(4) CHECKSUM(4)
func (c *Client) Verify(start, size, checksum uint32) error {
	cmd := make([]byte, 0, 1+12)
	cmd = append(cmd, CmdVerifyData)

	field := make([]byte, 4)
	binary.LittleEndian.PutUint32(field, start)
	cmd = append(cmd, field...)

	field = make([]byte, 4)
	binary.LittleEndian.PutUint32(field, size)
	cmd = append(cmd, field...)

	field = make([]byte, 4)
	binary.LittleEndian.PutUint32(field, checksum)
	cmd = append(cmd, field...)

	resp, err := c.exchange("verify", cmd, AckSize)
	if err != nil {
		return err
	}
	return expectAck("verify", resp)
}
