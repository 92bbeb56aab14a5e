// The put, get, delete and list commands work on single objects in the
// configured bucket.
package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put KEY VALUE",
	Short: "Store a value under a key",
	Long: `Put stores VALUE under KEY, replacing whatever was there. VALUE is
parsed as JSON when possible (numbers, lists, objects, true/false/null) and
stored as a plain string otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := s3osManager.Location(args[0])
		if err := s3osManager.Client.Store(context.Background(), loc, parseValue(args[1])); err != nil {
			return errors.Wrap(err, "Put failed")
		}
		s3osManager.Logger.Info("Stored " + loc.String())
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the value stored under a key as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := s3osManager.Client.Retrieve(context.Background(), s3osManager.Location(args[0]))
		if err != nil {
			return errors.Wrap(err, "Get failed")
		}
		return printValue(cmd.OutOrStdout(), v)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Delete the object stored under a key",
	Long:  `Delete removes KEY. Deleting a key that does not exist is not an error.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := s3osManager.Location(args[0])
		if err := s3osManager.Client.Delete(context.Background(), loc); err != nil {
			return errors.Wrap(err, "Delete failed")
		}
		s3osManager.Logger.Info("Deleted " + loc.String())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [PREFIX]",
	Short: "List keys in the bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		locs, err := s3osManager.Client.List(context.Background(), s3osManager.Bucket(), prefix)
		if err != nil {
			return errors.Wrap(err, "List failed")
		}
		for _, loc := range locs {
			fmt.Fprintln(cmd.OutOrStdout(), loc.Key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd, getCmd, deleteCmd, listCmd)
}
