package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/library"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a sourcecast from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.Delete(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, library.ErrNotFound) {
				return fmt.Errorf("no sourcecast with id %s", args[0])
			}
			return err
		}
		cmd.Printf("Deleted %s.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
