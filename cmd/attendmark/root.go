package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	attendmark "github.com/Mukul-Bhagat/AttendanceMark-sub003"
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

var (
	flagServer  string
	flagDir     string
	flagVerbose bool

	client *attendmark.Client
)

var rootCmd = &cobra.Command{
	Use:   "attendmark",
	Short: "AttendMark attendance tracking client",
	Long: `Command-line client for the AttendMark attendance tracking service.

Authenticate with your organization account, switch between organizations,
and record attendance for sessions.

The server address is resolved from --server, the ATTENDMARK_SERVER
environment variable, or ~/.attendmark/config.yaml, in that order.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "base URL of the AttendMark server")
	rootCmd.PersistentFlags().StringVar(&flagDir, "credential-dir", "", "directory holding stored credentials (default ~/.attendmark)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log API requests")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(orgsCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(attendCmd)
}

// ensureClient wires the SDK client and resolves any persisted session.
// A rejected stored token is purged by Initialize and simply leaves the
// client anonymous; only transport-level failures surface here.
func ensureClient(ctx context.Context, requireSession bool) error {
	if client == nil {
		cfg, err := loadConfig(flagServer, flagDir)
		if err != nil {
			return err
		}

		logger := zap.NewNop().Sugar()
		if flagVerbose {
			if dev, err := zap.NewDevelopment(); err == nil {
				logger = dev.Sugar()
			}
		}

		client, err = attendmark.New(attendmark.Config{
			BaseURL:       cfg.Server,
			CredentialDir: cfg.CredentialDir,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		if err := client.Sessions.Initialize(ctx); err != nil {
			return err
		}
	}

	if requireSession && !client.Sessions.Session().Authenticated() {
		return core.ErrNotAuthenticated
	}
	return nil
}
