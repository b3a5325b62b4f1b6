package cmd

import (
	"github.com/spf13/cobra"
)

// Version is the release version, overridden at link time with
// -ldflags "-X github.com/gordian-engine/dmerkle/cmd/dmerkle/cmd.Version=...".
var Version = "0.1.0-dev"

func (c *command) initVersionCmd() {
	c.root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	})
}
