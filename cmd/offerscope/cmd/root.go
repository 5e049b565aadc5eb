package cmd

import (
	"context"
	"fmt"
	"os"

	"offerscope-backend/lib/configutil"
	"offerscope-backend/lib/kvstore"
	"offerscope-backend/lib/telemetry"
	"offerscope-backend/services/notify"
	"offerscope-backend/services/session"
	"offerscope-backend/services/snapshots"
	"offerscope-backend/services/starred"

	"github.com/spf13/cobra"
)

type Config struct {
	Store  kvstore.Config `json:"store"`
	Notify notify.Options `json:"notify"`
}

var (
	verbose    bool
	configPath string

	config      Config
	store       kvstore.Store
	snapshotSvc snapshots.Service
	starredSvc  starred.Service
	sessionSvc  session.Service
	notifySvc   notify.Service
)

var rootCmd = &cobra.Command{
	Use:   "offerscope",
	Short: "offerscope extracts merchant offers from captured pages and tracks how they change.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		if _, err := telemetry.SetupFromEnv(cmd.Context(), "offerscope"); err != nil {
			return err
		}

		cfg, err := configutil.ReadConfig[Config](configPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read config: %w", err)
		}
		config = cfg
		if config.Store.File == "" && config.Store.Url == "" {
			// an in-memory store would lose the snapshot between runs
			config.Store.File = "offerscope.db"
		}

		db, err := config.Store.OpenDB()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		sqlStore, err := kvstore.NewSqlStore(db)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		store = sqlStore

		snapshotSvc = snapshots.NewService(store)
		starredSvc = starred.NewService(store)
		sessionSvc = session.NewService(snapshotSvc, starredSvc)
		notifySvc = notify.NewService(config.Notify)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "path to the configuration file")
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
