package cli

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/mchmarny/cardiocheck/pkg/logging"
	"github.com/mchmarny/cardiocheck/pkg/predict"
	"github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20
	serverMaxBodyBytes        = 1 << 16
)

var (
	//go:embed assets/* templates/*
	embedFS embed.FS

	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen (overrides config)",
	}

	noBrowserFlag = &cli.BoolFlag{
		Name:    "no-browser",
		Aliases: []string{"nb"},
		Usage:   "Do not open browser automatically",
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start the local prediction form server (model from --model, config or the bundled sample)",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			noBrowserFlag,
		},
	}
)

// server holds the per-process state shared by all handlers. Nothing in it
// is mutated after construction.
type server struct {
	predictor *predict.Predictor
	db        *sql.DB
	tmpl      *template.Template
}

func newServer(p *predict.Predictor, db *sql.DB) *server {
	return &server{
		predictor: p,
		db:        db,
		tmpl:      template.Must(template.New("").ParseFS(embedFS, "templates/*.html")),
	}
}

func cmdStartServer(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	p, err := loadPredictor(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	port := cfg.Config.Port
	if cmd.IsSet(portFlag.Name) {
		port = int(cmd.Int(portFlag.Name))
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(newServer(p, cfg.DB)),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
			done <- syscall.SIGTERM
		}
	}()

	url := fmt.Sprintf("http://%s", address)
	slog.Info("server started", "address", url, "model", p.Model())

	if !cmd.Bool(noBrowserFlag.Name) {
		openBrowser(url)
	}

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(s *server) http.Handler {
	assets, err := fs.Sub(embedFS, "assets")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()

	// Static files, templates stay private
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(assets)))
	mux.HandleFunc("GET /favicon.ico", faviconHandler)

	// Views
	mux.HandleFunc("GET /{$}", s.homeViewHandler)
	mux.HandleFunc("POST /predict", s.predictViewHandler)

	// API
	mux.HandleFunc("POST /api/predict", s.predictAPIHandler)
	mux.HandleFunc("GET /api/summary", s.summaryAPIHandler)
	mux.HandleFunc("GET /healthz", healthHandler)

	return logging.Middleware(slog.Default(), mux)
}

func openBrowser(url string) {
	var cmd string
	args := make([]string, 0, 1)

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
	case "linux":
		cmd = "xdg-open"
	default: // windows
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler"}
	}

	args = append(args, url)
	if err := exec.Command(cmd, args...).Start(); err != nil {
		slog.Error("failed to open browser", "error", err)
	}
}
