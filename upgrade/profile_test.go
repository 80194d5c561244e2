package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LairdCP/lrd-bt-utils/uwf"
)

func TestGenericProfileAcceptsAnyRegistration(t *testing.T) {
	p := NewGeneric(&mockChannel{})

	regs := []uwf.Registration{
		{Handle: 0, BaseAddress: 0x00010000, NumBanks: 1, BankSize: 0x40000, BankAlgo: 1},
		{Handle: 7, BaseAddress: 0, NumBanks: 4, BankSize: 0, BankAlgo: 9},
	}
	for _, reg := range regs {
		reg := reg
		assert.NoError(t, p.ValidateRegistration(&reg))
	}
}

func TestIG60ProfileValidateRegistration(t *testing.T) {
	tests := []struct {
		name    string
		reg     uwf.Registration
		wantErr bool
	}{
		{
			name: "expected layout",
			reg:  uwf.Registration{Handle: 0, NumBanks: 1, BankSize: 0x40000, BankAlgo: 1},
		},
		{
			name:    "wrong handle",
			reg:     uwf.Registration{Handle: 1, NumBanks: 1, BankSize: 0x40000, BankAlgo: 1},
			wantErr: true,
		},
		{
			name:    "two banks",
			reg:     uwf.Registration{Handle: 0, NumBanks: 2, BankSize: 0x40000, BankAlgo: 1},
			wantErr: true,
		},
		{
			name:    "zero bank size",
			reg:     uwf.Registration{Handle: 0, NumBanks: 1, BankSize: 0, BankAlgo: 1},
			wantErr: true,
		},
		{
			name:    "wrong bank algorithm",
			reg:     uwf.Registration{Handle: 0, NumBanks: 1, BankSize: 0x40000, BankAlgo: 2},
			wantErr: true,
		},
	}

	p := NewIG60BL654(&mockChannel{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateRegistration(&tt.reg)
			if tt.wantErr {
				var regErr *RegistrationError
				require.ErrorAs(t, err, &regErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestErasePlan(t *testing.T) {
	generic := NewGeneric(&mockChannel{})
	ig60 := NewIG60BL654(&mockChannel{})

	tests := []struct {
		name       string
		profile    Profile
		size       uint32
		enhanced   bool
		wantStride uint32
		wantCode   bool
	}{
		{name: "generic always sector stride", profile: generic, size: 0x20000, enhanced: true, wantStride: 0x1000},
		{name: "ig60 legacy sector stride", profile: ig60, size: 0x20000, enhanced: false, wantStride: 0x1000},
		{name: "ig60 enhanced whole blocks", profile: ig60, size: 0x20000, enhanced: true, wantStride: 0x10000, wantCode: true},
		{name: "ig60 enhanced ragged size", profile: ig60, size: 0x21000, enhanced: true, wantStride: 0x1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stride, code := tt.profile.ErasePlan(tt.size, 0x1000, tt.enhanced)
			assert.Equal(t, tt.wantStride, stride)
			if tt.wantCode {
				assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00}, code)
			} else {
				assert.Nil(t, code)
			}
		})
	}
}
