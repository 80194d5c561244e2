package atfile

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// AT commands of the smartBASIC file system front-end.
const (
	cmdOpenFile    = "AT+FOW \"%s\"\r\n"
	cmdWriteData   = "AT+FWRH \"%s\"\r\n"
	cmdCloseFile   = "AT+FCL\r\n"
	cmdListFiles   = "AT+DIR\r\n"
	cmdDeleteFile  = "AT+DEL \"%s\"\r\n"
	cmdDeleteForce = "AT+DEL \"%s\" +\r\n"
	cmdRenameFile  = "AT+REN \"%s\" \"%s\"\r\n"
)

// Return codes reported by the module.
const (
	returnCodeSize = 2

	returnCodeSuccess     = "00"
	returnCodeScriptFound = "06"
)

// UploadChunkSize is the number of raw bytes hex-encoded into each
// AT+FWRH write.
const UploadChunkSize = 32

// DefaultSettleDelay is how long the module is given to reset after the
// break condition before the first command.
const DefaultSettleDelay = 3 * time.Second

// Port is the serial link the client talks over.
type Port interface {
	Write(p []byte) error
	ReadExact(n int) ([]byte, error)
	ReadLine() ([]byte, error)
	SendBreak(d time.Duration) error
	FlushInput() error
}

// CommandError is a non-success return code from the module, with the
// error detail line that follows it.
type CommandError struct {
	Code   string
	Detail string
}

func (e *CommandError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("module returned code %s", e.Code)
	}
	return fmt.Sprintf("module returned code %s: %s", e.Code, e.Detail)
}

// Client manages files on the module's smartBASIC file system over AT
// commands.
type Client struct {
	port   Port
	settle time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithSettleDelay overrides the post-break settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) {
		c.settle = d
	}
}

// NewClient prepares the module for AT traffic: a break condition resets
// it, pending input is flushed, and the module is given time to settle.
func NewClient(port Port, opts ...Option) (*Client, error) {
	c := &Client{
		port:   port,
		settle: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := port.SendBreak(100 * time.Millisecond); err != nil {
		return nil, err
	}
	if err := port.FlushInput(); err != nil {
		return nil, err
	}
	time.Sleep(c.settle)

	return c, nil
}

// command writes one AT command and checks its return code. The module
// echoes a newline first, then a two-digit code; on failure the error
// detail line is attached.
func (c *Client) command(cmd string) error {
	if err := c.port.Write([]byte(cmd)); err != nil {
		return err
	}
	if _, err := c.port.ReadLine(); err != nil {
		return err
	}

	code, err := c.port.ReadExact(returnCodeSize)
	if err != nil {
		return err
	}
	codeStr := strings.TrimSpace(string(code))
	if codeStr != returnCodeSuccess {
		detail, _ := c.port.ReadLine()
		return &CommandError{Code: codeStr, Detail: strings.TrimSpace(string(detail))}
	}
	return nil
}

// Upload writes r to the module's file system under the given name. The
// data is hex-encoded in UploadChunkSize chunks.
func (c *Client) Upload(name string, r io.Reader) error {
	if err := c.command(fmt.Sprintf(cmdOpenFile, name)); err != nil {
		return fmt.Errorf("open %s at module: %w", name, err)
	}

	buf := make([]byte, UploadChunkSize)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			chunk := hex.EncodeToString(buf[:n])
			if err := c.command(fmt.Sprintf(cmdWriteData, chunk)); err != nil {
				return fmt.Errorf("write %s at module: %w", name, err)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read %s: %w", name, rerr)
		}
	}

	if err := c.command(cmdCloseFile); err != nil {
		return fmt.Errorf("close %s at module: %w", name, err)
	}
	return nil
}

// List returns the names of the files on the module. The module reports
// one return code per entry: success codes carry no name, script-found
// codes are followed by a name line; an empty read ends the listing.
func (c *Client) List() ([]string, error) {
	if err := c.port.Write([]byte(cmdListFiles)); err != nil {
		return nil, err
	}
	if _, err := c.port.ReadLine(); err != nil {
		return nil, err
	}

	var files []string
	for {
		code, err := c.port.ReadExact(returnCodeSize)
		if err != nil {
			return files, err
		}
		codeStr := strings.TrimSpace(string(code))
		if codeStr == "" {
			return files, nil
		}

		switch codeStr {
		case returnCodeSuccess:
			if _, err := c.port.ReadLine(); err != nil {
				return files, err
			}
		case returnCodeScriptFound:
			line, err := c.port.ReadLine()
			if err != nil {
				return files, err
			}
			if name := strings.TrimSpace(string(line)); name != "" {
				files = append(files, name)
			}
		default:
			return files, &CommandError{Code: codeStr}
		}
	}
}

// Delete removes a file from the module. Force deletes a file that is
// open or otherwise protected.
func (c *Client) Delete(name string, force bool) error {
	cmd := cmdDeleteFile
	if force {
		cmd = cmdDeleteForce
	}
	if err := c.command(fmt.Sprintf(cmd, name)); err != nil {
		return fmt.Errorf("delete %s at module: %w", name, err)
	}
	return nil
}

// Rename renames a file on the module.
func (c *Client) Rename(oldName, newName string) error {
	if err := c.command(fmt.Sprintf(cmdRenameFile, oldName, newName)); err != nil {
		return fmt.Errorf("rename %s at module: %w", oldName, err)
	}
	return nil
}
