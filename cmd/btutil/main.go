// Command btutil upgrades the firmware of a Laird Bluetooth module over
// its UART bootloader and manages files on the module's smartBASIC file
// system.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	portName string
	baudRate int
	verbose  bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "btutil",
		Short:         "Laird Bluetooth module utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVarP(&portName, "port", "p", "", "serial port of the module (required)")
	root.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "initial baud rate")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = root.MarkPersistentFlagRequired("port")

	root.AddCommand(newUpgradeCmd())
	root.AddCommand(newFileCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
