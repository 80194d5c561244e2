package fup

import "testing"

func TestDataChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{name: "empty", data: nil, want: 0x00},
		{name: "single byte", data: []byte{0x42}, want: 0x42},
		{name: "sum below 256", data: []byte{0x01, 0x02, 0x03}, want: 0x06},
		{name: "sum truncates to low byte", data: []byte{0xFF, 0xFF, 0x02}, want: 0x00},
		{name: "sum wraps past 256", data: []byte{0xFF, 0x10}, want: 0x0F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DataChecksum(tt.data); got != tt.want {
				t.Errorf("DataChecksum(% X) = 0x%02X, want 0x%02X", tt.data, got, tt.want)
			}
		})
	}
}

func TestBlockChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{name: "empty", data: nil, want: 0},
		{name: "sum below 256", data: []byte{0x01, 0x02, 0x03}, want: 6},
		{name: "sum above 256 is not truncated", data: []byte{0xFF, 0xFF, 0x02}, want: 0x200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BlockChecksum(tt.data); got != tt.want {
				t.Errorf("BlockChecksum(% X) = 0x%X, want 0x%X", tt.data, got, tt.want)
			}
		})
	}
}

// The two checksums differ exactly in truncation: the data-section byte is
// the low 8 bits of the verify sum.
func TestChecksumDuality(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i * 7)
	}

	full := BlockChecksum(data)
	if got := DataChecksum(data); got != byte(full&0xFF) {
		t.Errorf("DataChecksum = 0x%02X, want low byte 0x%02X of BlockChecksum 0x%X", got, byte(full&0xFF), full)
	}
}
