// Package atfile manages files on a module's smartBASIC file system using
// the AT command front-end (AT+FOW/FWRH/FCL, AT+DIR, AT+DEL, AT+REN).
// Unlike the bootloader protocol, this talks to the module's installed
// firmware; the two share no state.
package atfile
