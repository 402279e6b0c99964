package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jask/taskpad/internal/prefs"
	"github.com/jask/taskpad/internal/service"
)

func newResetCmd(v *viper.Viper) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all local data",
		Long: `Delete everything taskpad keeps locally: the saved session and the
remembered email. With the sqlite backend the whole key-value table is wiped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset deletes all local data, pass --yes to confirm")
			}
			a, err := bootstrap(v.GetString("config"))
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.db != nil {
				removed, err := (&service.MaintenanceService{DB: a.db}).Reset(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d stored values\n", removed)
			} else {
				if err := a.store.Remove(cmd.Context()); err != nil {
					return fmt.Errorf("remove token: %w", err)
				}
				fmt.Fprintln(out, "Removed stored session")
			}

			if dir, err := prefs.Dir(); err == nil {
				if err := prefs.ClearLastUser(dir); err != nil {
					return fmt.Errorf("clear preferences: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}
