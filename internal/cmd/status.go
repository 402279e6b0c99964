package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/session"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is saved",
		Long:  `Load the saved session the same way the UI does at startup and print its state. The token itself is never printed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(v.GetString("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			initErr := a.session.Initialize(cmd.Context())
			if initErr != nil && !errors.Is(initErr, session.ErrStorageRead) {
				return initErr
			}
			snap := a.session.Snapshot()

			fmt.Fprintf(out, "Backend: %s\n", a.cfg.Storage.Backend)
			fmt.Fprintf(out, "State: %s\n", snap.State())
			if initErr != nil {
				fmt.Fprintf(out, "Warning: %v\n", initErr)
			}
			if id, ok := api.DescribeToken(snap.Token); ok {
				if id.Subject != "" {
					fmt.Fprintf(out, "Subject: %s\n", id.Subject)
				}
				if !id.ExpiresAt.IsZero() {
					note := ""
					if id.Expired(time.Now()) {
						note = " (expired)"
					}
					fmt.Fprintf(out, "Expires: %s%s\n", id.ExpiresAt.Local().Format("2006-01-02 15:04:05"), note)
				}
			}
			return nil
		},
	}
}
