// Package fup implements the BL654 firmware upgrade bootloader protocol.
//
// # Protocol
//
// The bootloader speaks a compact ASCII/binary protocol over UART. The host
// sends a command, then reads a fixed-size reply:
//
//	0x80            -> 14-byte ATS identification
//	'p' ID          -> 'a' / 'f'
//	'V'             -> 6-byte version string ("vX.Y\r\n")
//	's' OPT VAL     -> 4-byte setting reply
//	'e' ADDR [CODE] -> 'a' / 'f'
//	'w' ADDR LEN    -> 'a' / 'f'
//	'd' DATA CSUM   -> 'a' / 'f'
//	'v' ADDR SZ SUM -> 'a' / 'f'
//
// Multi-byte integers are little-endian. Two distinct checksums are in
// play: each data section carries the low byte of its byte sum
// (DataChecksum), while verify carries the full 32-bit sum over the whole
// window (BlockChecksum).
//
// # Usage
//
//	client := fup.NewClient(port)
//	ats, err := client.Sync()
//	if err != nil {
//	    return err
//	}
//	if err := client.Acknowledge(); err != nil {
//	    return err
//	}
//
// # Enhanced mode
//
// Bootloaders of major version EnhancedVersionMajor and above accept
// 16-bit write lengths, 64 KiB erase blocks and a 1 Mbaud UART, switched
// on via SettingSet with the Option* codes. The host mirrors the baud
// switch by reopening its port; the bootloader has no re-sync mechanism,
// so the new port must be fully open before the next command.
//
// # Error handling
//
// Replies shorter than the command's fixed size are ShortResponseError;
// refused commands are NackError. The client never retries.
package fup
