package atfile

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPort scripts the module side of an AT exchange. Replies are popped
// in order, alternating between ReadLine and ReadExact as the client's
// return-code parse dictates.
type mockPort struct {
	writes   []string
	lines    [][]byte
	lineIdx  int
	codes    [][]byte
	codeIdx  int
	breakSen bool
	flushed  bool
}

func (m *mockPort) Write(p []byte) error {
	m.writes = append(m.writes, string(p))
	return nil
}

func (m *mockPort) ReadExact(n int) ([]byte, error) {
	if m.codeIdx < len(m.codes) {
		code := m.codes[m.codeIdx]
		m.codeIdx++
		if len(code) > n {
			code = code[:n]
		}
		return code, nil
	}
	return nil, nil
}

func (m *mockPort) ReadLine() ([]byte, error) {
	if m.lineIdx < len(m.lines) {
		line := m.lines[m.lineIdx]
		m.lineIdx++
		return line, nil
	}
	return nil, nil
}

func (m *mockPort) SendBreak(d time.Duration) error {
	m.breakSen = true
	return nil
}

func (m *mockPort) FlushInput() error {
	m.flushed = true
	return nil
}

// ok queues the newline echo and success code for one command.
func (m *mockPort) ok() {
	m.lines = append(m.lines, []byte("\n"))
	m.codes = append(m.codes, []byte("00"))
}

func newTestClient(t *testing.T, port *mockPort) *Client {
	t.Helper()
	client, err := NewClient(port, WithSettleDelay(0))
	require.NoError(t, err)
	require.True(t, port.breakSen, "module must be reset with a break")
	require.True(t, port.flushed, "stale input must be flushed")
	return client
}

func TestUpload(t *testing.T) {
	data := bytes.Repeat([]byte{0xA5}, UploadChunkSize+4)

	port := &mockPort{}
	port.ok() // AT+FOW
	port.ok() // first chunk
	port.ok() // tail chunk
	port.ok() // AT+FCL

	client := newTestClient(t, port)
	require.NoError(t, client.Upload("upgrade.uwf", bytes.NewReader(data)))

	require.Len(t, port.writes, 4)
	assert.Equal(t, "AT+FOW \"upgrade.uwf\"\r\n", port.writes[0])

	wantFirst := strings.Repeat("a5", UploadChunkSize)
	assert.Equal(t, "AT+FWRH \""+wantFirst+"\"\r\n", port.writes[1])
	assert.Equal(t, "AT+FWRH \"a5a5a5a5\"\r\n", port.writes[2])
	assert.Equal(t, "AT+FCL\r\n", port.writes[3])
}

func TestUploadDeviceError(t *testing.T) {
	port := &mockPort{}
	port.ok() // AT+FOW
	port.lines = append(port.lines, []byte("\n"), []byte("01 \tFSA_FILENAME_TOO_LONG\r\n"))
	port.codes = append(port.codes, []byte("01"))

	client := newTestClient(t, port)
	err := client.Upload("a-very-long-name.uwf", bytes.NewReader([]byte{0x01}))

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "01", cmdErr.Code)
	assert.Contains(t, cmdErr.Detail, "FSA_FILENAME_TOO_LONG")
}

func TestList(t *testing.T) {
	port := &mockPort{}
	// Command echo newline, then interleaved codes: two scripts among
	// success lines, ended by a timeout (empty code).
	port.lines = append(port.lines,
		[]byte("\n"),
		[]byte(" main.uwc\r\n"), // after 06
		[]byte("\r\n"),          // after 00
		[]byte(" data.txt\r\n"), // after 06
	)
	port.codes = append(port.codes,
		[]byte("06"),
		[]byte("00"),
		[]byte("06"),
		[]byte{},
	)

	client := newTestClient(t, port)
	files, err := client.List()
	require.NoError(t, err)

	assert.Equal(t, []string{"main.uwc", "data.txt"}, files)
	assert.Equal(t, []string{"AT+DIR\r\n"}, port.writes)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name  string
		force bool
		want  string
	}{
		{name: "plain", want: "AT+DEL \"old.uwc\"\r\n"},
		{name: "forced", force: true, want: "AT+DEL \"old.uwc\" +\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &mockPort{}
			port.ok()

			client := newTestClient(t, port)
			require.NoError(t, client.Delete("old.uwc", tt.force))
			assert.Equal(t, []string{tt.want}, port.writes)
		})
	}
}

func TestRename(t *testing.T) {
	port := &mockPort{}
	port.ok()

	client := newTestClient(t, port)
	require.NoError(t, client.Rename("old.uwc", "new.uwc"))
	assert.Equal(t, []string{"AT+REN \"old.uwc\" \"new.uwc\"\r\n"}, port.writes)
}
