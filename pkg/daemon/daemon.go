package daemon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Server exposes a cobra command tree over HTTP. GET on a command path prints
// its help; POST runs it with one argument per line of the request body.
type Server struct {
	root *cobra.Command

	// commands share flag and viper state, so only one runs at a time
	mu sync.Mutex
}

func New(root *cobra.Command) *Server {
	return &Server{root: root}
}

// Router builds the chi router for every runnable command below the root.
func (s *Server) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok\n")
	})
	s.createCommandTree(router, "", s.root)
	return router
}

// Run listens on endpoint until ctx is done.
func (s *Server) Run(ctx context.Context, endpoint string) error {
	srv := &http.Server{
		Addr:              endpoint,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("failed to shut down daemon cleanly")
		}
	}()

	log.Info().Str("endpoint", endpoint).Msg("daemon listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) createCommandTree(router chi.Router, endpoint string, cmd *cobra.Command) {
	if cmd != s.root {
		endpoint = endpoint + "/" + cmd.Name()
		router.Get(endpoint, s.helpHandler(cmd))
		if cmd.Runnable() {
			router.Post(endpoint, s.commandHandler(cmd))
		}
	}
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" {
			continue
		}
		if child.Runnable() || child.HasSubCommands() {
			s.createCommandTree(router, endpoint, child)
		}
	}
}

func (s *Server) helpHandler(cmd *cobra.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		cmd.SetOut(w)
		defer cmd.SetOut(nil)
		_ = cmd.Help()
	}
}

func (s *Server) commandHandler(cmd *cobra.Command) http.HandlerFunc {
	path := strings.Fields(cmd.CommandPath())[1:]
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		args := append([]string{}, path...)
		for _, line := range strings.Split(string(body), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				args = append(args, line)
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		// buffer output so a failure can still set the status code
		var out bytes.Buffer
		s.root.SetOut(&out)
		s.root.SetErr(&out)
		s.root.SetArgs(args)
		defer func() {
			s.root.SetOut(nil)
			s.root.SetErr(nil)
			s.root.SetArgs(nil)
			resetFlags(s.root)
		}()

		if err := s.root.ExecuteContext(r.Context()); err != nil {
			log.Error().Err(err).Strs("args", args).Msg("daemon command failed")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write(out.Bytes())
			io.WriteString(w, err.Error()+"\n")
			return
		}
		w.Write(out.Bytes())
	}
}

// resetFlags restores every flag changed by the last run so the next request
// starts from the defaults.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
