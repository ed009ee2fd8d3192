package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dkathuria/codeaudit/internal/config"
	"github.com/dkathuria/codeaudit/internal/groq"
	"github.com/dkathuria/codeaudit/internal/keypool"
	"github.com/dkathuria/codeaudit/internal/review"
	"github.com/dkathuria/codeaudit/internal/server"
	"github.com/dkathuria/codeaudit/internal/store"
)

var (
	flagAddr      string
	flagModel     string
	flagDatabase  string
	flagStaticDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the codeaudit HTTP service",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :8000)")
	serveCmd.Flags().StringVar(&flagModel, "model", "", "Groq model name")
	serveCmd.Flags().StringVar(&flagDatabase, "database", "", "Path to the sqlite history database")
	serveCmd.Flags().StringVar(&flagStaticDir, "static-dir", "", "Directory with the bundled frontend")
}

func runServe() error {
	overrides := map[string]string{
		"addr":      flagAddr,
		"model":     flagModel,
		"database":  flagDatabase,
		"staticDir": flagStaticDir,
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{})

	keys, err := newKeyManager(cfg, log)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}

	engine := review.NewEngine(keys, log)
	return server.New(cfg, engine, keys, st, log).Run()
}

// newKeyManager discovers the GROQ_API_KEY* pool from the environment and
// wires it to key-bound Groq clients.
func newKeyManager(cfg config.Config, log *logrus.Logger) (*keypool.Manager, error) {
	return keypool.New(keypool.Options{
		Keys: config.DiscoverKeys(os.Environ()),
		Build: func(apiKey string) keypool.Dispatcher {
			return groq.NewClient(apiKey, cfg.Model, cfg.Temperature)
		},
		MaxRetriesPerKey: cfg.MaxRetriesPerKey,
		Cooldown:         time.Duration(cfg.CooldownSeconds * float64(time.Second)),
		Logger:           log,
	})
}
