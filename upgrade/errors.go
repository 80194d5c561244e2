package upgrade

import (
	"fmt"

	"github.com/LairdCP/lrd-bt-utils/uwf"
)

// EntryError indicates the module could not be switched into bootloader
// mode, before any protocol traffic.
type EntryError struct {
	Err error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("enter bootloader: %v", e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// SyncError indicates the bootloader handshake failed: a truncated ATS
// reply or a refused ATS acknowledge.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("target platform: failed to sync with bootloader: %v", e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// PlatformInvalidError indicates the bootloader rejected the platform ID
// carried by the UWF file.
type PlatformInvalidError struct{}

func (e *PlatformInvalidError) Error() string {
	return "target platform: invalid platform ID"
}

// PlatformFatalError indicates the bootloader replied to the platform
// check with something other than an ack or a rejection.
type PlatformFatalError struct {
	Response byte
}

func (e *PlatformFatalError) Error() string {
	return fmt.Sprintf("target platform: non-ack response 0x%02X to platform ID", e.Response)
}

// RegistrationError indicates the register-device record does not describe
// the device the profile expects.
type RegistrationError struct {
	Registration uwf.Registration
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register device: unexpected registration data (handle=%d banks=%d bank_size=0x%X algo=%d)",
		e.Registration.Handle, e.Registration.NumBanks, e.Registration.BankSize, e.Registration.BankAlgo)
}

// PreconditionError indicates a record arrived before the records it
// depends on had completed. No bytes are written to the transport.
type PreconditionError struct {
	// RecordID is the record that was refused
	RecordID byte

	// Missing names the unmet predecessor
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("record '%c': %s not yet processed", e.RecordID, e.Missing)
}

// EraseSizeError indicates an erase descriptor covers at least a full bank.
type EraseSizeError struct {
	Size     uint32
	BankSize uint32
}

func (e *EraseSizeError) Error() string {
	return fmt.Sprintf("erase blocks: erase size 0x%X is not below bank size 0x%X", e.Size, e.BankSize)
}

// WriteSizeError indicates a write-blocks payload covers at least a full
// bank.
type WriteSizeError struct {
	Size     uint32
	BankSize uint32
}

func (e *WriteSizeError) Error() string {
	return fmt.Sprintf("write blocks: data size 0x%X is not below bank size 0x%X", e.Size, e.BankSize)
}

// UnknownRecordError indicates a record ID the session has no handler for.
type UnknownRecordError struct {
	ID byte
}

func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("unknown record id 0x%02X", e.ID)
}
