// Handles the "s3os dict" command and its subcommands, which operate on one
// named dictionary.
package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3os/pkg/s3os"
	"github.com/spf13/cobra"
)

var dictCmdConfig struct {
	id string
}

// dictCmd represents the dict command
var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Work with a named dictionary",
	Long: `A dictionary stores each item under "<id>/<key>" in the bucket, so
several dictionaries can share one bucket.`,
}

func openDict() (*s3os.Dict, error) {
	if dictCmdConfig.id == "" {
		return nil, errors.New("--id is required")
	}
	return s3osManager.Dict(dictCmdConfig.id), nil
}

var dictGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDict()
		if err != nil {
			return err
		}
		v, err := d.Get(context.Background(), args[0])
		if err != nil {
			return errors.Wrap(err, "Get failed")
		}
		return printValue(cmd.OutOrStdout(), v)
	},
}

var dictSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store one item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDict()
		if err != nil {
			return err
		}
		if err := d.Set(context.Background(), args[0], parseValue(args[1])); err != nil {
			return errors.Wrap(err, "Set failed")
		}
		s3osManager.Logger.Info("Stored " + d.RemoteKey(args[0]))
		return nil
	},
}

var dictDeleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Delete one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDict()
		if err != nil {
			return err
		}
		if err := d.Delete(context.Background(), args[0]); err != nil {
			return errors.Wrap(err, "Delete failed")
		}
		s3osManager.Logger.Info("Deleted " + d.RemoteKey(args[0]))
		return nil
	},
}

var dictDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every item of the dictionary as one JSON object",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDict()
		if err != nil {
			return err
		}
		all, err := d.GetAllFromS3(context.Background())
		if err != nil {
			return errors.Wrap(err, "Dump failed")
		}
		return printValue(cmd.OutOrStdout(), all)
	},
}

var dictClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every item of the dictionary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDict()
		if err != nil {
			return err
		}
		if err := d.Clear(context.Background()); err != nil {
			return errors.Wrap(err, "Clear failed")
		}
		s3osManager.Logger.Info(fmt.Sprintf("Cleared dictionary %s", dictCmdConfig.id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictGetCmd, dictSetCmd, dictDeleteCmd, dictDumpCmd, dictClearCmd)

	dictCmd.PersistentFlags().StringVarP(&dictCmdConfig.id, "id", "i", "", "ID of the dictionary")
}
