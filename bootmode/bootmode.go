// Package bootmode switches the Bluetooth module between its bootloader
// and firmware boot modes.
//
// Two channels exist on gateway hardware: direct GPIO control of the
// module's boot-mode and reset lines, and an RPC on the platform device
// service for units where the lines are owned by the system. Both present
// the same two-operation contract.
package bootmode

// Boot mode values shared by both channel variants.
const (
	// ModeBootloader selects the UART bootloader at reset
	ModeBootloader = 0

	// ModeFirmware selects the installed firmware (smartBASIC) at reset
	ModeFirmware = 1
)

// Channel switches the module's boot mode. EnterBootloader must succeed
// before any bootloader protocol traffic; LeaveBootloader returns the
// module to its firmware.
type Channel interface {
	EnterBootloader() error
	LeaveBootloader() error
}
