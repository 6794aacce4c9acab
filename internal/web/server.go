package web

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hpungsan/deckhand/internal/config"
)

//go:embed templates/*.html static/*
var assets embed.FS

// contentPolicy allows remote images since slides may reference them.
const contentPolicy = "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data: https:"

const shutdownTimeout = 5 * time.Second

// subFS returns one directory of the embedded assets.
func subFS(dir string) fs.FS {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		panic("web: missing embedded " + dir + ": " + err.Error())
	}
	return sub
}

// NewServer returns the deck viewer listening on bind:port. It is not
// started; pass it to Run.
func NewServer(db *sql.DB, cfg *config.Config, version, bind string, port int) *http.Server {
	h := &Handlers{
		db:       db,
		cfg:      cfg,
		renderer: NewRenderer(subFS("templates"), version),
	}
	return &http.Server{
		Addr:              net.JoinHostPort(bind, strconv.Itoa(port)),
		Handler:           securityHeaders(h.routes(subFS("static"))),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (h *Handlers) routes(static fs.FS) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.RedirectHandler("/decks", http.StatusFound))

	mux.HandleFunc("GET /decks", h.HandleList)
	mux.HandleFunc("POST /decks/purge", h.HandlePurge)
	mux.HandleFunc("GET /decks/{id}", h.HandleDetail)
	mux.HandleFunc("DELETE /decks/{id}", h.HandleDelete)

	mux.HandleFunc("GET /preview", h.HandlePreview)
	mux.HandleFunc("POST /preview", h.HandlePreviewSubmit)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	return mux
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Content-Security-Policy", contentPolicy)
		hdr.Set("X-Content-Type-Options", "nosniff")
		hdr.Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves srv until it fails or the process gets SIGINT or SIGTERM,
// then shuts down gracefully.
func Run(srv *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Printf("Deckhand viewer running at http://%s", srv.Addr)
	if host, _, err := net.SplitHostPort(srv.Addr); err == nil {
		if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
			log.Printf("WARNING: listening on all interfaces; the viewer may be reachable from the network")
		}
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
