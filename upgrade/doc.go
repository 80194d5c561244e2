// Package upgrade executes UWF firmware upgrade plans against a BL654
// Bluetooth module over its UART bootloader.
//
// # Overview
//
// A Session pulls records from a UWF file and translates each into
// bootloader protocol transactions:
//
//   - target platform: bootloader handshake and platform validation,
//     followed by enhanced-mode detection
//   - register device / select device / sector map: flash layout bookkeeping
//   - erase blocks: sector-by-sector (or 64 KiB block) erase
//   - write blocks: chunked writes with windowed verification
//
// Records must arrive in dependency order; a record whose predecessors
// have not completed is refused without touching the transport. All errors
// are terminal: there is no retry and no resume, and the session always
// returns the module to firmware mode and closes the transport on the way
// out.
//
// # Basic usage
//
//	port, err := transport.OpenSerial("/dev/ttyUSB0", 115200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	file, err := os.Open("firmware.uwf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	sess := upgrade.New(port, upgrade.NewGeneric(bootmode.NewGPIO()),
//	    upgrade.WithLogger(logrus.StandardLogger()),
//	    upgrade.WithProgressCallback(func(p upgrade.Progress) {
//	        fmt.Printf("[%s] %d records, %d bytes\n", p.Phase, p.Records, p.BytesWritten)
//	    }),
//	)
//	if err := sess.Run(context.Background(), file); err != nil {
//	    log.Fatal(err)
//	}
//
// # Device profiles
//
// A Profile bundles the device-variant capabilities the session needs:
// registration validation, the boot-mode channel, and the erase plan.
// NewGeneric accepts any module reachable over host GPIOs; NewIG60BL654
// targets the BL654 on an IG60 gateway, validating its single-bank flash
// layout and switching boot modes through the platform device service.
//
// # Enhanced mode
//
// After the platform handshake the session reads the bootloader version.
// Major versions 6 and up renegotiate the UART to 1 Mbaud (the transport
// is reopened to match), switch to 16-bit write lengths and 8 KiB write
// blocks, and may erase in 64 KiB blocks when a region's size allows.
package upgrade
