package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pickbetter/labelscan/internal/auth"
	"github.com/pickbetter/labelscan/internal/client"
	"github.com/pickbetter/labelscan/internal/demo"
	"github.com/pickbetter/labelscan/internal/events"
	"github.com/pickbetter/labelscan/internal/history"
	"github.com/pickbetter/labelscan/internal/models"
	"github.com/pickbetter/labelscan/internal/scanner"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "labelscan",
	Short: "Scan food labels and get personalized nutrition analysis",
	Long: `labelscan looks up food products by barcode, normalizes the analysis
the backend returns and keeps a bounded history of everything you
scanned. Unknown products can be contributed with label photos, and a
chat assistant answers questions against your health profile.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.labelscan.yaml)")
	rootCmd.PersistentFlags().Bool("offline", false, "Use the offline demo backend instead of the real service")
	rootCmd.PersistentFlags().String("backend-url", "", "Analysis service base URL")
	rootCmd.PersistentFlags().Int64("seed", 42, "Random seed for the offline demo backend")

	viper.BindPFlag("offline", rootCmd.PersistentFlags().Lookup("offline"))
	viper.BindPFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend-url"))
	viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles everything a command needs: config, the signed-in
// session, the stored profile and the wired scan pipeline.
type app struct {
	cfg     *models.Config
	session *auth.Session
	profile *models.UserProfile
	backend client.Backend
	store   history.Store
	emitter *events.Emitter
	coord   *scanner.Coordinator
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	a := &app{cfg: cfg}

	sessionPath, err := models.DefaultSessionPath()
	if err != nil {
		return nil, err
	}
	a.session, err = auth.LoadSession(sessionPath)
	if err != nil {
		return nil, err
	}

	profilePath, err := models.DefaultProfilePath()
	if err != nil {
		return nil, err
	}
	a.profile, err = models.LoadProfileFile(profilePath)
	if err != nil {
		return nil, err
	}
	if a.profile == nil {
		a.profile = &models.UserProfile{}
	}
	if a.session != nil {
		a.profile.UserID = a.session.UserID
	}

	if cfg.Offline {
		a.backend = demo.NewBackend(cfg.Seed)
	} else {
		var tokens client.TokenSource
		if a.session != nil {
			tokens = a.session
		}
		c := client.New(cfg.BackendURL, tokens)
		c.ChatTimeout = cfg.ChatTimeout
		a.backend = c
	}

	switch cfg.History.Backend {
	case "", "sqlite":
		if err := models.EnsureParentDir(cfg.History.Path); err != nil {
			return nil, err
		}
		a.store, err = history.OpenSQLite(cfg.History.Path)
	case "postgres":
		a.store, err = history.OpenPostgres(ctx, cfg.History.Database)
	case "memory":
		a.store = history.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening history store: %w", err)
	}

	sink, err := events.NewSink(cfg.Events)
	if err != nil {
		a.store.Close()
		return nil, err
	}
	a.emitter = events.NewEmitter(sink, cfg.Events.Topic)

	a.coord = scanner.NewCoordinator(a.backend, a.store, a.emitter, a.profile)
	return a, nil
}

func (a *app) Close() {
	if a.emitter != nil {
		a.emitter.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

func (a *app) userID() string {
	if a.session != nil {
		return a.session.UserID
	}
	return ""
}
