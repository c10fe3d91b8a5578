package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smazurov/waveoverlay/internal/version"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(_ *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Printf("waveoverlay %s\n", info.Version)
			fmt.Printf("  commit:     %s\n", info.GitCommit)
			fmt.Printf("  built:      %s\n", info.BuildDate)
			fmt.Printf("  go version: %s\n", info.GoVersion)
			fmt.Printf("  platform:   %s\n", info.Platform)
		},
	}
}
