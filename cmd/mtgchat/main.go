// Command mtgchat is an interactive console for the MTG card search tool. It
// starts mtgserver from its own directory and forwards each line typed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spachava753/mtgmcp/internal/chat"
	"github.com/spachava753/mtgmcp/internal/commands"
	"github.com/spachava753/mtgmcp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "mtgchat",
	Short:         "Chat with the MTG card search tool",
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.ExecuteChat(cmd.Context(), commands.ChatOptions{
			Stdin:       cmd.InOrStdin(),
			Stdout:      cmd.OutOrStdout(),
			Interactive: chat.IsTTY(),
		})
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stdout, "[Client] Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
