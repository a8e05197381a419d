package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dynbook/internal/models"
	"github.com/ziadkadry99/dynbook/internal/server"
	"github.com/ziadkadry99/dynbook/internal/web"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long:  `Starts a local web server with the home, upload and scenario views. The active book and theme are shared with the CLI.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		restoreActiveBook(ctx, a)

		cfg := server.Config{Port: a.cfg.Server.Port, AllowAll: a.cfg.Server.AllowAllOrigins}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if cmd.Flags().Changed("allow-all-origins") {
			cfg.AllowAll = serveAllowAll
		}

		srv := server.New(cfg, a.db, a.client)
		ui, err := web.New(web.Options{
			Service:     a.client,
			Preferences: a.prefs,
			Notices:     a.notices,
			History:     a.history,
		})
		if err != nil {
			return err
		}
		ui.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "dynbook %s web UI starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", a.cfg.APIURL)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", a.db.Path())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// restoreActiveBook loads the book saved by an earlier run so the navbar
// points at it. Failures only mean the navbar starts on the upload page.
func restoreActiveBook(ctx context.Context, a *app) {
	id, err := a.prefs.ActiveBookID(ctx)
	if err != nil || id == "" {
		return
	}
	books, err := a.client.ListBooks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not restore active book %s: %v\n", id, err)
		return
	}
	if book, ok := models.FindBook(books, id); ok {
		a.client.SetActiveBook(book)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 4200, "port to listen on (default: server.port from config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
