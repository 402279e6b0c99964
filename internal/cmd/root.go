// Package cmd is the taskpad command line.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "taskpad",
		Short: "Terminal task list backed by a remote task API",
		Long: `taskpad signs in to a task backend, keeps the session token on local
storage between runs, and lets you manage your tasks from the terminal.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, v.GetString("config"))
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/taskpad/config.toml)")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	v.SetEnvPrefix("TASKPAD")
	_ = v.BindEnv("config")

	root.AddCommand(
		newRunCmd(v),
		newStatusCmd(v),
		newLogoutCmd(v),
		newResetCmd(v),
	)
	return root
}
