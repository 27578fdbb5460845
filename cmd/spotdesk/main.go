// Command spotdesk is the marketplace companion: it logs in and out, manages
// the profile, books spaces, and can serve a local gateway over the session
// for other tools.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spotdesk/spotdesk-go/backend"
	"github.com/spotdesk/spotdesk-go/internal/config"
	"github.com/spotdesk/spotdesk-go/session"
	"github.com/spotdesk/spotdesk-go/session/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spotdesk",
		Short:         "Book spaces on the marketplace from your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}

	cmd.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
		profileCmd(),
		forgotPasswordCmd(),
		resetPasswordCmd(),
		bookCmd(),
		serveCmd(),
	)
	return cmd
}

func setupLogger() {
	cfg := config.New()
	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// app wires the SDK pieces the same way for every command.
type app struct {
	cfg     config.Config
	client  *backend.Client
	store   *storage.FileStore
	session *session.Manager
}

func newApp() (*app, error) {
	cfg := config.New()
	client := backend.NewClient(cfg.GetBackendBaseURL(), cfg.GetHTTPTimeout())

	var storeOpts []storage.FileStoreOption
	if secret := cfg.GetCredentialsSecret(); secret != "" {
		storeOpts = append(storeOpts, storage.WithSecret(secret))
	}
	store := storage.NewFileStore(cfg.GetCredentialsPath(), storeOpts...)

	manager, err := session.NewManager(client, store,
		session.WithNavigator(session.NavigatorFunc(func(route string) {
			fmt.Println("navigate:", route)
		})),
	)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, client: client, store: store, session: manager}, nil
}
