package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andrebq/blogbox/internal/logutil"
	"golang.org/x/sync/errgroup"
)

type (
	Server struct {
		Name    string
		Bind    string
		Handler http.Handler
	}
)

const (
	shutdownTimeout = 15 * time.Second
)

func Serve(ctx context.Context, bind string, handler http.Handler) error {
	return serve(ctx, Server{Name: "http", Bind: bind, Handler: handler})
}

// ServeAll runs every server until ctx is done, or until one of them fails
// which also stops the others.
func ServeAll(ctx context.Context, servers ...Server) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, s := range servers {
		s := s
		group.Go(func() error {
			err := serve(groupCtx, s)
			if err == nil && ctx.Err() == nil {
				err = errors.New("httpserver: " + s.Name + " stopped unexpectedly")
			}
			return err
		})
	}
	return group.Wait()
}

func serve(ctx context.Context, s Server) error {
	server := http.Server{
		Handler:           s.Handler,
		Addr:              s.Bind,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute * 5,
	}
	err := make(chan error, 1)
	done := make(chan struct{})
	go serveInBackground(ctx, s.Name, &server, err, done)
	<-done
	return <-err
}

func serveInBackground(ctx context.Context, name string, server *http.Server, firstErr chan<- error, done chan<- struct{}) {
	log := logutil.GetOrDefault(ctx).With().Str("server.name", name).Str("server.addr", server.Addr).Logger()
	defer close(done)
	serverCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		defer close(firstErr)
		log.Info().Msg("Starting HTTP server")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			// shutdown called,
			// ignore the error
			return
		} else if err != nil {
			select {
			case firstErr <- err:
			default:
			}
			return
		}
	}()
	<-serverCtx.Done()
	if ctx.Err() != nil {
		log.Info().Msg("Initiating shutdown process")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		server.Shutdown(shutdownCtx)
		log.Info().Msg("Shutdown completed")
	}
}
