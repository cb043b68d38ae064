package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gowiki/internal/web"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := startApp(ctx, flags.configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			listener, err := net.Listen("tcp", a.cfg.HTTP.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", a.cfg.HTTP.Addr)
			}
			return serve(ctx, a, listener)
		},
	}
}

// serve runs the configured number of HTTP workers on one shared listener.
// Each worker has its own handler and holds its own client of the page
// service. When ctx is cancelled every worker is drained before returning.
func serve(ctx context.Context, a *app, listener net.Listener) error {
	listener = &sharedListener{Listener: listener}

	workers := make([]*http.Server, a.cfg.HTTP.Workers)
	for i := range workers {
		log := a.log.WithField("worker", i)
		workers[i] = &http.Server{
			Handler: web.NewServer(a.svc.Client(), a.cfg.Session.Key, log),
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range workers {
		i, srv := i, srv
		g.Go(func() error {
			a.log.WithFields(logrus.Fields{"worker": i, "addr": listener.Addr().String()}).Info("http worker listening")
			err := srv.Serve(listener)
			switch {
			case err == nil, errors.Is(err, http.ErrServerClosed):
				return nil
			case errors.Is(err, net.ErrClosed) && gctx.Err() != nil:
				// Another worker shut the shared listener first.
				return nil
			}
			return errors.Wrapf(err, "http worker %d", i)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down http workers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		var firstErr error
		for _, srv := range workers {
			if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = errors.Wrap(err, "shutdown http worker")
			}
		}
		return firstErr
	})

	return g.Wait()
}

// sharedListener lets every worker close the listener while only the first
// close reaches the socket.
type sharedListener struct {
	net.Listener
	once sync.Once
	err  error
}

func (l *sharedListener) Close() error {
	l.once.Do(func() { l.err = l.Listener.Close() })
	return l.err
}
