package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/waveoverlay/cmd"
	"github.com/smazurov/waveoverlay/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:     "waveoverlay",
		Short:   "Transparent waveform overlay video generator",
		Version: version.String(),
	}

	root.AddCommand(cmd.CreateRenderCmd())
	root.AddCommand(cmd.CreateProbeCmd())
	root.AddCommand(cmd.CreateVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
