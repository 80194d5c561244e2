package fup

// Command bytes for the BL654 firmware upgrade bootloader.
// Sync is a raw binary byte; the remaining commands are ASCII.
const (
	// CmdSync starts the bootloader handshake and solicits the ATS reply
	CmdSync = 0x80

	// CmdPlatformCheck submits the target platform ID for acceptance
	CmdPlatformCheck = 'p'

	// CmdVersion requests the bootloader version string
	CmdVersion = 'V'

	// CmdSettingSet sets a bootloader option
	CmdSettingSet = 's'

	// CmdEraseSector erases one sector (or one 64 KiB block in enhanced mode)
	CmdEraseSector = 'e'

	// CmdWriteSector announces a data block at a flash address
	CmdWriteSector = 'w'

	// CmdDataSection carries the data block announced by CmdWriteSector
	CmdDataSection = 'd'

	// CmdVerifyData checks a window of written data against a 32-bit checksum
	CmdVerifyData = 'v'
)

// Response bytes and fixed response sizes.
const (
	// ResponseAck acknowledges a command
	ResponseAck = 'a'

	// ResponseError rejects a command
	ResponseError = 'f'

	// AckSize is the size of a plain ack/nack reply
	AckSize = 1

	// ATSSize is the size of the Answer-to-Select reply to CmdSync
	ATSSize = 14

	// VersionSize is the size of the reply to CmdVersion ("vX.Y\r\n")
	VersionSize = 6

	// SettingSetSize is the size of the reply to CmdSettingSet
	SettingSetSize = 4
)

// Bootloader option codes for CmdSettingSet.
const (
	// OptionEraseLength selects the current erase length in bytes
	OptionEraseLength = 0x0000

	// OptionWriteLength selects the current write length field size
	OptionWriteLength = 0x0002

	// OptionBaudRate selects the current UART baud rate
	OptionBaudRate = 0x0005
)

// Option values understood by enhanced bootloaders.
const (
	// EraseLength64K switches OptionEraseLength to 64 KiB blocks
	EraseLength64K = 0x2

	// WriteLength16Bit switches OptionWriteLength to a 16-bit length field
	WriteLength16Bit = 0x2

	// BaudCode1M switches OptionBaudRate to 1,000,000 baud
	BaudCode1M = 0xA
)

// EnhancedBaudRate is the UART speed an enhanced bootloader runs at after
// BaudCode1M has been applied. The host must reopen its port to match.
const EnhancedBaudRate = 1000000

// EnhancedVersionMajor is the first bootloader major version with
// enhanced-mode support (16-bit write lengths, 64 KiB erase, high baud).
const EnhancedVersionMajor = 6
