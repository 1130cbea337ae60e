package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfview/shelfview/cmd/account"
	"github.com/shelfview/shelfview/cmd/browse"
	"github.com/shelfview/shelfview/cmd/serve"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "shelfview",
		Short: "library catalog browser",
		Long: fmt.Sprintf(`shelfview (v%s)

A relational view over a remote library catalog: browse books joined with
their authors, filter and sort the result, and manage the catalog and
circulation as a librarian.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of shelfview",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shelfview v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(browse.BrowseCommands)
	RootCmd.AddCommand(account.AccountCommands)
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
