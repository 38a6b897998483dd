package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flwd/keeperd/internal/config"
	"github.com/flwd/keeperd/internal/logging"
)

// GenConfigCmd prints a default keeperd configuration file to stdout, ready
// to be dropped into /etc/keeperd/keeperd.yaml and edited.
var GenConfigCmd = &cobra.Command{
	Use:   "genconfig",
	Short: "Print a default keeperd configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := yaml.Marshal(config.Default())
		if err != nil {
			logging.Log.Errorf("[keeperctl] Failed to render config: %v", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
	},
}
