// Command focus-tui is the WorkPulse focus timer client. Without a
// subcommand it opens the TUI; "serve" runs the local development backend.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/workpulse/focus-tui/internal/api"
	"github.com/workpulse/focus-tui/internal/app"
	"github.com/workpulse/focus-tui/internal/config"
	"github.com/workpulse/focus-tui/internal/devserver"
	"github.com/workpulse/focus-tui/internal/engine"
	"github.com/workpulse/focus-tui/internal/history"
	"github.com/workpulse/focus-tui/internal/mirror"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
		token      string
	)

	cmd := &cobra.Command{
		Use:          "focus-tui",
		Short:        "Terminal client for the WorkPulse focus timer",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.Server.URL = serverURL
			}
			if token != "" {
				cfg.Server.Token = token
			}
			return runTUI(cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.Flags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	cmd.Flags().StringVar(&token, "token", "", "auth token (overrides config)")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("focus-tui", version)
		},
	})
	return cmd
}

func runTUI(cfg *config.Config) error {
	// The TUI owns the terminal; anything the standard logger emits would
	// tear the screen. Park it in a file when debugging, drop it otherwise.
	if path := os.Getenv("FOCUS_TUI_DEBUG"); path != "" {
		logFile, err := tea.LogToFile(path, "focus-tui")
		if err != nil {
			return err
		}
		defer logFile.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	slot := mirror.NewStore(cfg.State.Dir)

	client := api.NewClient(cfg.Server.URL, cfg.Server.Token)
	notify := api.NewNotifyClient(cfg.WSURL(), cfg.Server.Token)
	eng := engine.New(slot)

	histPath := cfg.State.HistoryPath
	if histPath == "" {
		histPath = filepath.Join(filepath.Dir(slot.Path()), "history.db")
	}
	hist, err := history.Open(histPath)
	if err != nil {
		// The session log is informational; run without it.
		log.Printf("history disabled: %v", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	m := app.New(cfg, client, notify, eng, hist)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	_, err = p.Run()
	return err
}

func serveCmd() *cobra.Command {
	var (
		host  string
		port  int
		token string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local in-memory timer backend for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := devserver.NewStore()
			notifier := devserver.NewNotifier()
			srv := devserver.NewServer(store, notifier, token)
			return srv.ListenAndServe(host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "listen address")
	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token")
	return cmd
}
