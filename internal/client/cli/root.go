package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/client/api"
	"github.com/dmitrijs2005/credkeeper/internal/client/config"
	"github.com/spf13/cobra"
)

// newAPI builds the server client; tests replace it.
var newAPI = func(cfg *config.Config) authAPI {
	return api.New(cfg.ServerURL, cfg.RequestTimeout)
}

type root struct {
	configPath string
	serverURL  string
	timeout    time.Duration

	app *App
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	r := &root{}

	cmd := &cobra.Command{
		Use:          "credkeeper",
		Short:        "Console client for the credkeeper account service",
		Long:         "Without a subcommand credkeeper starts an interactive shell.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := r.loadConfig(cmd)
			if err != nil {
				return err
			}
			r.app = NewApp(newAPI(cfg), cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "credkeeper client (type 'help' for commands)")
			runREPL(cmd.Context(), r.app, r.app.status, r.app.reader, r.app.out)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&r.configPath, "config", "c", "", "path to JSON config file")
	cmd.PersistentFlags().StringVarP(&r.serverURL, "server", "s", "", "server base URL (default http://127.0.0.1:8000)")
	cmd.PersistentFlags().DurationVarP(&r.timeout, "timeout", "t", 0, "request timeout (default 10s)")

	cmd.AddCommand(
		newRegisterCmd(r),
		newLoginCmd(r),
		newUpdateEmailCmd(r),
		newUpdatePasswordCmd(r),
		newResetPasswordCmd(r),
	)

	return cmd
}

// loadConfig applies explicitly set flags on top of file and environment.
func (r *root) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = r.serverURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.RequestTimeout = r.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newRegisterCmd(r *root) *cobra.Command {
	var in registerInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.register(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVar(&in.FirstName, "firstname", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "lastname", "", "last name")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "account email")
	return cmd
}

func newLoginCmd(r *root) *cobra.Command {
	var in loginInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.login(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "account email")
	return cmd
}

func newUpdateEmailCmd(r *root) *cobra.Command {
	var in updateEmailInput

	cmd := &cobra.Command{
		Use:   "update-email",
		Short: "Change the account email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.updateEmail(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "current account email")
	cmd.Flags().StringVar(&in.NewEmail, "new-email", "", "new account email")
	return cmd
}

func newUpdatePasswordCmd(r *root) *cobra.Command {
	var in updatePasswordInput

	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.updatePassword(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "account email")
	return cmd
}

func newResetPasswordCmd(r *root) *cobra.Command {
	var in resetInput

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password without the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Method == "token" && in.Token == "" {
				return errors.New("--token is required with --method token")
			}
			return r.app.resetPassword(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&in.Method, "method", "", "reset method recorded in the audit log")
	cmd.Flags().StringVar(&in.Token, "token", "", "signed reset token")
	return cmd
}
