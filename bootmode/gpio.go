package bootmode

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Platform GPIO names under the sysfs base path.
const (
	gpioBootMode = "bt_boot_mode"
	gpioNReset   = "card_nreset"
)

// DefaultGPIOBasePath is the sysfs directory holding the module's control
// pins on the gateway platform.
const DefaultGPIOBasePath = "/sys/devices/platform/gpio"

// GPIO is a Channel that drives the module's boot-mode and reset lines
// through platform sysfs attribute files. Setting the boot-mode pin and
// pulsing reset low-high reboots the module into the selected mode.
type GPIO struct {
	base string
}

// NewGPIO creates a GPIO channel over DefaultGPIOBasePath.
func NewGPIO() *GPIO {
	return &GPIO{base: DefaultGPIOBasePath}
}

// NewGPIOAt creates a GPIO channel over an alternate sysfs base path.
func NewGPIOAt(base string) *GPIO {
	return &GPIO{base: base}
}

// EnterBootloader resets the module into bootloader mode.
func (g *GPIO) EnterBootloader() error {
	return g.reset(ModeBootloader)
}

// LeaveBootloader resets the module back into firmware mode.
func (g *GPIO) LeaveBootloader() error {
	return g.reset(ModeFirmware)
}

func (g *GPIO) reset(mode int) error {
	if err := g.setValue(gpioBootMode, mode); err != nil {
		return err
	}
	if err := g.setValue(gpioNReset, 0); err != nil {
		return err
	}
	return g.setValue(gpioNReset, 1)
}

func (g *GPIO) setValue(name string, value int) error {
	path := filepath.Join(g.base, name, "value")
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return fmt.Errorf("set gpio %s=%d: %w", name, value, err)
	}
	return nil
}
