package upgrade

import (
	"encoding/binary"

	"github.com/LairdCP/lrd-bt-utils/bootmode"
	"github.com/LairdCP/lrd-bt-utils/fup"
	"github.com/LairdCP/lrd-bt-utils/uwf"
)

// eraseBlock64K is the erase stride enhanced bootloaders support as an
// alternative to the sector size.
const eraseBlock64K = 0x10000

// Profile is the capability bundle that adapts the session to a concrete
// device variant: how registrations are validated, how the module is
// switched in and out of bootloader mode, and how erase regions are
// partitioned. The caller builds the bundle and injects it at session
// construction.
type Profile interface {
	// Name identifies the profile in logs
	Name() string

	// ValidateRegistration accepts or rejects a register-device record
	ValidateRegistration(reg *uwf.Registration) error

	// BootMode returns the channel used to switch boot modes
	BootMode() bootmode.Channel

	// ErasePlan picks the erase stride for a region of the given size and
	// the block code to append to each erase command, or nil for the
	// legacy sector-stride form
	ErasePlan(size, sectorSize uint32, enhanced bool) (stride uint32, blockCode []byte)
}

// GenericProfile drives any module wired to the host's GPIO control lines.
// It accepts every registration record and always erases by sector size.
type GenericProfile struct {
	channel bootmode.Channel
}

// NewGeneric creates a generic profile over the given boot-mode channel.
func NewGeneric(channel bootmode.Channel) *GenericProfile {
	return &GenericProfile{channel: channel}
}

func (p *GenericProfile) Name() string { return "generic" }

// ValidateRegistration accepts any registration.
func (p *GenericProfile) ValidateRegistration(reg *uwf.Registration) error {
	return nil
}

func (p *GenericProfile) BootMode() bootmode.Channel { return p.channel }

func (p *GenericProfile) ErasePlan(size, sectorSize uint32, enhanced bool) (uint32, []byte) {
	return sectorSize, nil
}

// Expected registration values for the gateway-hosted BL654.
const (
	ig60ExpectedHandle   = 0
	ig60ExpectedNumBanks = 1
	ig60ExpectedBankAlgo = 1
)

// IG60BL654Profile drives the BL654 module on an IG60 gateway, where boot
// mode is switched through the platform device service. It enforces the
// module's expected flash registration and uses 64 KiB erase blocks when
// the bootloader and the erase region allow it.
type IG60BL654Profile struct {
	channel bootmode.Channel
}

// NewIG60BL654 creates an IG60 BL654 profile over the given boot-mode
// channel.
func NewIG60BL654(channel bootmode.Channel) *IG60BL654Profile {
	return &IG60BL654Profile{channel: channel}
}

func (p *IG60BL654Profile) Name() string { return "ig60-bl654" }

// ValidateRegistration checks the record against the single-bank layout of
// the BL654.
func (p *IG60BL654Profile) ValidateRegistration(reg *uwf.Registration) error {
	if reg.Handle != ig60ExpectedHandle ||
		reg.NumBanks != ig60ExpectedNumBanks ||
		reg.BankSize == 0 ||
		reg.BankAlgo != ig60ExpectedBankAlgo {
		return &RegistrationError{Registration: *reg}
	}
	return nil
}

func (p *IG60BL654Profile) BootMode() bootmode.Channel { return p.channel }

// ErasePlan uses 64 KiB blocks when the bootloader is enhanced and the
// region is a whole number of blocks; otherwise the sector stride.
func (p *IG60BL654Profile) ErasePlan(size, sectorSize uint32, enhanced bool) (uint32, []byte) {
	if enhanced && size%eraseBlock64K == 0 {
		code := make([]byte, 4)
		binary.LittleEndian.PutUint32(code, fup.EraseLength64K)
		return eraseBlock64K, code
	}
	return sectorSize, nil
}
