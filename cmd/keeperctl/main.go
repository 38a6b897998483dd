// Command keeperctl provides CLI access to the keeperd administrative
// interface. It speaks the four-letter command protocol over TCP and prints
// the server's text response.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flwd/keeperd/cmd/keeperctl/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "keeperctl",
	Short: "Administrative client for keeperd",
	Long:  `keeperctl sends four-letter administrative commands to a running keeperd and prints the response.`,
}

func main() {
	cmd.BindFlags(rootCmd)
	rootCmd.AddCommand(cmd.SendCmd)
	rootCmd.AddCommand(cmd.GenConfigCmd)
	rootCmd.AddCommand(cmd.FourLetterCmds()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
