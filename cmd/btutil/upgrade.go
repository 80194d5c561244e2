package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LairdCP/lrd-bt-utils/bootmode"
	"github.com/LairdCP/lrd-bt-utils/transport"
	"github.com/LairdCP/lrd-bt-utils/upgrade"
)

// Device profile names accepted by --device.
const (
	profileGeneric = "generic"
	profileIG60    = "ig60"
)

func newUpgradeCmd() *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "upgrade <file.uwf>",
		Short: "Apply a UWF firmware upgrade to the module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			profile, err := buildProfile(device)
			if err != nil {
				return err
			}

			port, err := transport.OpenSerial(portName, baudRate)
			if err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"port":    portName,
				"baud":    baudRate,
				"profile": profile.Name(),
				"file":    args[0],
			}).Info("starting upgrade")

			var lastPhase upgrade.Phase
			sess := upgrade.New(port, profile,
				upgrade.WithLogger(logrus.StandardLogger()),
				upgrade.WithProgressCallback(func(p upgrade.Progress) {
					if p.Phase != lastPhase {
						lastPhase = p.Phase
						fmt.Fprintf(os.Stderr, "%s...\n", p.Phase)
					}
				}),
			)

			// The session owns the port and closes it.
			return sess.Run(cmd.Context(), file)
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", profileGeneric,
		fmt.Sprintf("device profile (%s|%s)", profileGeneric, profileIG60))

	return cmd
}

// buildProfile assembles the capability bundle for the selected device
// variant.
func buildProfile(device string) (upgrade.Profile, error) {
	switch device {
	case profileGeneric:
		return upgrade.NewGeneric(bootmode.NewGPIO()), nil
	case profileIG60:
		channel, err := bootmode.NewDeviceService()
		if err != nil {
			return nil, err
		}
		return upgrade.NewIG60BL654(channel), nil
	default:
		return nil, fmt.Errorf("unknown device profile %q", device)
	}
}
