package cmd

import (
	"github.com/spf13/cobra"
)

const AppName = "fatlens"

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - read-only MBR/FAT16 disk image inspector",
	}

	rootCmd.AddCommand(DefineInspectCommand())
	rootCmd.AddCommand(DefineMountCommand())

	return rootCmd.Execute()
}
