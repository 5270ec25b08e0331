package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gangway-io/gangway"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gangway",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gangway version %s\n", strings.TrimSpace(gangway.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
