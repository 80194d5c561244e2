package bootmode

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Device service addressing on the system bus.
const (
	deviceServiceName = "com.lairdtech.device.DeviceService"
	deviceServicePath = "/com/lairdtech/device/DeviceService"
	deviceIface       = "com.lairdtech.device.public.DeviceInterface"

	setBtBootModeMethod = deviceIface + ".SetBtBootMode"
)

// DeviceService is a Channel that switches boot mode through the platform
// device service, for units where the module's control lines are owned by
// the system rather than exposed as GPIOs.
type DeviceService struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewDeviceService connects to the system bus and binds the device
// service object.
func NewDeviceService() (*DeviceService, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &DeviceService{
		conn: conn,
		obj:  conn.Object(deviceServiceName, deviceServicePath),
	}, nil
}

// EnterBootloader asks the device service to reboot the module into
// bootloader mode.
func (d *DeviceService) EnterBootloader() error {
	return d.setBootMode(ModeBootloader)
}

// LeaveBootloader asks the device service to return the module to its
// firmware.
func (d *DeviceService) LeaveBootloader() error {
	return d.setBootMode(ModeFirmware)
}

func (d *DeviceService) setBootMode(mode int) error {
	call := d.obj.Call(setBtBootModeMethod, 0, int32(mode))
	if call.Err != nil {
		return fmt.Errorf("SetBtBootMode(%d): %w", mode, call.Err)
	}

	var ret int32
	if err := call.Store(&ret); err != nil {
		return fmt.Errorf("SetBtBootMode(%d): decode reply: %w", mode, err)
	}
	if ret != 0 {
		return fmt.Errorf("SetBtBootMode(%d): device service returned %d", mode, ret)
	}
	return nil
}

// Close releases the bus connection.
func (d *DeviceService) Close() error {
	return d.conn.Close()
}
