package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LairdCP/lrd-bt-utils/atfile"
	"github.com/LairdCP/lrd-bt-utils/transport"
)

func newFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Manage files on the module's smartBASIC file system",
	}

	cmd.AddCommand(newFileUploadCmd())
	cmd.AddCommand(newFileListCmd())
	cmd.AddCommand(newFileDeleteCmd())
	cmd.AddCommand(newFileRenameCmd())

	return cmd
}

// openFileClient opens the serial port and prepares the AT command client.
func openFileClient() (*atfile.Client, *transport.SerialPort, error) {
	port, err := transport.OpenSerial(portName, baudRate)
	if err != nil {
		return nil, nil, err
	}

	client, err := atfile.NewClient(port)
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	return client, port, nil
}

func newFileUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <name> <path>",
		Short: "Upload a local file to the module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			client, port, err := openFileClient()
			if err != nil {
				return err
			}
			defer port.Close()

			return client.Upload(args[0], f)
		},
	}
}

func newFileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the files on the module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, port, err := openFileClient()
			if err != nil {
				return err
			}
			defer port.Close()

			files, err := client.List()
			if err != nil {
				return err
			}
			for _, name := range files {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newFileDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a file from the module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, port, err := openFileClient()
			if err != nil {
				return err
			}
			defer port.Close()

			return client.Delete(args[0], force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "delete even if the file is protected")

	return cmd
}

func newFileRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <current> <new>",
		Short: "Rename a file on the module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, port, err := openFileClient()
			if err != nil {
				return err
			}
			defer port.Close()

			return client.Rename(args[0], args[1])
		},
	}
}
