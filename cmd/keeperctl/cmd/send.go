// Package cmd provides the CLI commands for querying a running keeperd
// through its four-letter administrative interface.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flwd/keeperd/internal/admincli"
	"github.com/flwd/keeperd/internal/logging"
)

var (
	addrOverride    string
	timeoutOverride int
)

// BindFlags attaches the connection flags shared by every subcommand.
func BindFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&addrOverride, "addr", "", "admin address of the keeperd instance (overrides config)")
	root.PersistentFlags().IntVar(&timeoutOverride, "timeout", 0, "request timeout in seconds (overrides config)")
}

func client() *admincli.Client {
	cfg, err := admincli.LoadConfig()
	if err != nil {
		logging.Log.Errorf("[keeperctl] Failed to load config: %v", err)
		cfg = admincli.DefaultConfig()
	}

	addr := cfg.Addr
	if addrOverride != "" {
		addr = addrOverride
	}
	timeout := cfg.Timeout()
	if timeoutOverride > 0 {
		timeout = time.Duration(timeoutOverride) * time.Second
	}
	return admincli.New(addr, timeout)
}

func send(name string) {
	resp, err := client().Send(name)
	if err != nil {
		logging.Log.Errorf("[keeperctl] error: %v", err)
		os.Exit(1)
	}
	fmt.Print(resp)
	// ruok and isro answer without a trailing newline.
	if len(resp) > 0 && resp[len(resp)-1] != '\n' {
		fmt.Println()
	}
}

// SendCmd sends an arbitrary four-letter command.
var SendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send a four-letter command to keeperd",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		send(args[0])
	},
}

// FourLetterCmds exposes each four-letter command as its own subcommand, so
// `keeperctl mntr` works without the send verb.
func FourLetterCmds() []*cobra.Command {
	shorthands := []struct {
		name  string
		short string
	}{
		{"ruok", "Check whether the server process is alive"},
		{"mntr", "Print cluster health variables"},
		{"srvr", "Print full server details"},
		{"stat", "Print brief server details and connected clients"},
		{"conf", "Print the effective server configuration"},
		{"cons", "List connection statistics for all clients"},
		{"envi", "Print details about the serving environment"},
		{"wchs", "Print brief watch information"},
		{"wchc", "List watches grouped by session"},
		{"wchp", "List watches grouped by path"},
		{"dump", "List outstanding sessions and ephemeral nodes (leader only)"},
		{"dirs", "Print snapshot and log directory sizes"},
		{"isro", "Check whether the server is read-only"},
		{"srst", "Reset server statistics"},
		{"crst", "Reset connection statistics"},
	}

	cmds := make([]*cobra.Command, 0, len(shorthands))
	for _, sh := range shorthands {
		name := sh.name
		cmds = append(cmds, &cobra.Command{
			Use:   name,
			Short: sh.short,
			Run: func(cmd *cobra.Command, args []string) {
				send(name)
			},
		})
	}
	return cmds
}
