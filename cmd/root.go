package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/usenet/cmd/gen"
	"github.com/luma/usenet/internal/meta"
)

var rootCmd = &cobra.Command{
	Use:     "usenet",
	Short:   "An NNTP client and development mock server",
	Version: meta.Version,
	Long: `usenet speaks the NNTP network news protocol (RFC 3977/4643).

It can check a news server (connect, authenticate, negotiate
capabilities, select a group) and run a small mock NNTP server for
local development.
`,
}

func Execute() {
	rootCmd.AddCommand(CheckCmd)
	rootCmd.AddCommand(ServeCmd)
	rootCmd.AddCommand(gen.RootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
