package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/capture"
	"github.com/fakeyudi/sourcereel/internal/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Capture edits of a program file until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		if err := ensureSession(store); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cmd.Printf("Watching %s (Ctrl+C to stop).\n", args[0])
		return capture.Watch(ctx, args[0], store, clk, newLogger(cmd))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
