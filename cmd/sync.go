package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/capture"
	"github.com/fakeyudi/sourcereel/internal/session"
)

// ensureSession makes sure a session exists on disk so edits have a
// workspace to land in.
func ensureSession(store session.SessionStore) error {
	return store.Update(func(cur *session.Session) (*session.Session, error) {
		if cur != nil {
			return nil, nil
		}
		return orNewSession(nil), nil
	})
}

var syncCmd = &cobra.Command{
	Use:   "sync <file>",
	Short: "Capture edits of a program file as editor deltas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		if err := ensureSession(store); err != nil {
			return err
		}

		res, err := capture.SyncFile(args[0], store, clk)
		if err != nil {
			return err
		}
		switch {
		case res.Deltas == 0:
			cmd.Println("Editor already up to date.")
		case res.Recorded:
			cmd.Printf("%d delta(s) applied and recorded.\n", res.Deltas)
		default:
			cmd.Printf("%d delta(s) applied, not recorded.\n", res.Deltas)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

