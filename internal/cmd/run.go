package cmd

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/prefs"
	"github.com/jask/taskpad/internal/service"
	"github.com/jask/taskpad/internal/tui"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the task UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, v.GetString("config"))
		},
	}
}

func runTUI(cmd *cobra.Command, configPath string) error {
	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	client := api.New(a.cfg.API.BaseURL, a.session,
		api.WithTimeout(a.cfg.API.Timeout),
		api.WithLogger(a.log),
	)

	var prefsDir string
	if a.cfg.UI.RememberUser {
		if prefsDir, err = prefs.Dir(); err != nil {
			a.log.Warn("no preferences dir", slog.Any("err", err))
			prefsDir = ""
		}
	}

	var p *tea.Program
	model := tui.New(cmd.Context(), tui.Deps{
		Session:  a.session,
		API:      client,
		Tasks:    &service.TaskService{API: client},
		Log:      a.log,
		PrefsDir: prefsDir,
		Send:     func(msg tea.Msg) { p.Send(msg) },
	})
	defer model.Close()

	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		a.log.Error("ui exited", slog.Any("err", err))
		return err
	}
	return nil
}
