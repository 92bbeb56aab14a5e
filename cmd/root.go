// Root of command-line argument parsing.
// This file was based off the standard cobra template, see
// https://github.com/spf13/cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/serverlessresearch/s3os/pkg/s3osmgr"
	"github.com/spf13/cobra"
)

var rootCmdConfig struct {
	cfgFile string
	backend string
	bucket  string
	codec   string
	verbose bool
}

var s3osManager *s3osmgr.S3osManager

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "s3os",
	Short:         "Store and retrieve values in object storage",
	Long:          `Put, get and delete values in S3 (or a compatible backend), either as single objects or as named dictionaries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mgrArgs := map[string]interface{}{}
		if rootCmdConfig.cfgFile != "" {
			mgrArgs["config-file"] = rootCmdConfig.cfgFile
		}

		// Only flags given on the command line override the config file
		overrides := map[string]interface{}{}
		if rootCmdConfig.backend != "" {
			overrides["backend"] = rootCmdConfig.backend
		}
		if rootCmdConfig.bucket != "" {
			overrides["bucket.name"] = rootCmdConfig.bucket
		}
		if rootCmdConfig.codec != "" {
			overrides["codec.name"] = rootCmdConfig.codec
		}
		if rootCmdConfig.verbose {
			overrides["log.level"] = "debug"
		}
		mgrArgs["overrides"] = overrides

		var err error
		s3osManager, err = s3osmgr.NewManager(mgrArgs)
		if err != nil {
			return fmt.Errorf("Failed to initialize s3os manager: %v", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		s3osManager.Destroy()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if s3osManager == nil || s3osManager.Logger == nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		} else {
			s3osManager.Logger.Error(err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdConfig.cfgFile, "config", "", "config file (default is configs/s3os.yaml or ~/.s3os/s3os.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootCmdConfig.backend, "backend", "", "object store backend: s3, local, redis or memory")
	rootCmd.PersistentFlags().StringVarP(&rootCmdConfig.bucket, "bucket", "b", "", "bucket to use (default \"s3os\")")
	rootCmd.PersistentFlags().StringVar(&rootCmdConfig.codec, "codec", "", "value encoding: cbor or msgpack")
	rootCmd.PersistentFlags().BoolVarP(&rootCmdConfig.verbose, "verbose", "v", false, "log every remote operation")
}
