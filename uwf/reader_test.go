package uwf

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// record builds one wire-format record.
func record(id byte, payload []byte) []byte {
	b := []byte{id}
	length := make([]byte, 4)
	binary.LittleEndian.PutUint32(length, uint32(len(payload)))
	b = append(b, length...)
	return append(b, payload...)
}

func TestReaderNext(t *testing.T) {
	stream := append(record(RecordTargetPlatform, []byte{0x01, 0x02}),
		record(RecordUnregister, nil)...)

	r := NewReader(bytes.NewReader(stream))

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if rec.ID != RecordTargetPlatform || rec.Length != 2 {
		t.Fatalf("Next() = (%c, %d), want (T, 2)", rec.ID, rec.Length)
	}
	payload, err := rec.Payload()
	if err != nil {
		t.Fatalf("Payload() error = %v", err)
	}
	if !bytes.Equal(payload, []byte{0x01, 0x02}) {
		t.Errorf("Payload() = % X, want 01 02", payload)
	}

	rec, err = r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if rec.ID != RecordUnregister || rec.Length != 0 {
		t.Fatalf("Next() = (%c, %d), want (U, 0)", rec.ID, rec.Length)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("Next() at end = %v, want io.EOF", err)
	}
}

// An unread payload must not desynchronize the stream.
func TestReaderSkipsUnreadPayload(t *testing.T) {
	stream := append(record(RecordWriteBlocks, bytes.Repeat([]byte{0xAA}, 64)),
		record(RecordUnregister, nil)...)

	r := NewReader(bytes.NewReader(stream))

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	// Payload deliberately not consumed.

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if rec.ID != RecordUnregister {
		t.Errorf("Next() id = %c, want U", rec.ID)
	}
}

func TestReaderPartialBodyRead(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5A}, 32)
	stream := append(record(RecordWriteBlocks, payload), record(RecordUnregister, nil)...)

	r := NewReader(bytes.NewReader(stream))

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	head := make([]byte, 8)
	if _, err := io.ReadFull(rec.Body(), head); err != nil {
		t.Fatalf("ReadFull(Body()) error = %v", err)
	}
	if !bytes.Equal(head, payload[:8]) {
		t.Errorf("Body() head = % X, want % X", head, payload[:8])
	}

	rec, err = r.Next()
	if err != nil {
		t.Fatalf("Next() after partial body read error = %v", err)
	}
	if rec.ID != RecordUnregister {
		t.Errorf("Next() id = %c, want U", rec.ID)
	}
}

func TestReaderTruncated(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
	}{
		{name: "truncated length field", stream: []byte{RecordTargetPlatform, 0x02, 0x00}},
		{name: "truncated payload", stream: record(RecordTargetPlatform, []byte{0x01, 0x02})[:6]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.stream))
			rec, err := r.Next()
			if err == nil {
				// Header parsed; the payload read must fail instead.
				if _, err = rec.Payload(); err == nil {
					t.Fatal("expected error on truncated stream, got nil")
				}
			}
			if err == io.EOF {
				t.Fatal("truncated stream reported as clean EOF")
			}
		})
	}
}

func TestParseRegistration(t *testing.T) {
	payload := []byte{
		0x00,                   // handle
		0x00, 0x00, 0x01, 0x00, // base address 0x00010000
		0x01,                   // num banks
		0x00, 0x00, 0x04, 0x00, // bank size 0x40000
		0x01, // bank algo
	}

	reg, err := ParseRegistration(payload)
	if err != nil {
		t.Fatalf("ParseRegistration() error = %v", err)
	}

	want := Registration{Handle: 0, BaseAddress: 0x00010000, NumBanks: 1, BankSize: 0x40000, BankAlgo: 1}
	if *reg != want {
		t.Errorf("ParseRegistration() = %+v, want %+v", *reg, want)
	}

	if _, err := ParseRegistration(payload[:10]); err == nil {
		t.Error("ParseRegistration() on short payload: expected error, got nil")
	}
}

func TestParseSectorMap(t *testing.T) {
	payload := []byte{
		0x04, 0x00, 0x00, 0x00, // sectors
		0x00, 0x10, 0x00, 0x00, // sector size 0x1000
	}

	m, err := ParseSectorMap(payload)
	if err != nil {
		t.Fatalf("ParseSectorMap() error = %v", err)
	}
	if m.Sectors != 4 || m.SectorSize != 0x1000 {
		t.Errorf("ParseSectorMap() = %+v, want sectors=4 size=0x1000", *m)
	}

	if _, err := ParseSectorMap(payload[:7]); err == nil {
		t.Error("ParseSectorMap() on short payload: expected error, got nil")
	}
}

func TestParseErase(t *testing.T) {
	payload := []byte{
		0x00, 0x20, 0x00, 0x00, // offset 0x2000
		0x00, 0x40, 0x00, 0x00, // size 0x4000
	}

	e, err := ParseErase(payload)
	if err != nil {
		t.Fatalf("ParseErase() error = %v", err)
	}
	if e.Offset != 0x2000 || e.Size != 0x4000 {
		t.Errorf("ParseErase() = %+v, want offset=0x2000 size=0x4000", *e)
	}
}

func TestParseWriteHeader(t *testing.T) {
	payload := []byte{
		0x00, 0x00, 0x00, 0x00, // offset
		0x01, 0x00, 0x00, 0x00, // flags
	}

	h, err := ParseWriteHeader(payload)
	if err != nil {
		t.Fatalf("ParseWriteHeader() error = %v", err)
	}
	if h.Offset != 0 || h.Flags != 1 {
		t.Errorf("ParseWriteHeader() = %+v, want offset=0 flags=1", *h)
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection([]byte{0x02, 0x01})
	if err != nil {
		t.Fatalf("ParseSelection() error = %v", err)
	}
	if sel.Handle != 2 || sel.Bank != 1 {
		t.Errorf("ParseSelection() = %+v, want handle=2 bank=1", *sel)
	}

	if _, err := ParseSelection([]byte{0x02}); err == nil {
		t.Error("ParseSelection() on short payload: expected error, got nil")
	}
}
