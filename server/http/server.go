package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jimyoyo0329/socagent/internal/service/annotate"
	"github.com/jimyoyo0329/socagent/internal/service/lookup"
	"github.com/jimyoyo0329/socagent/router"
	"github.com/jimyoyo0329/socagent/server"
)

type httpServer struct {
	options  server.Options
	srv      *http.Server
	router   *router.Router
	annotate *annotate.Service
	lookup   *lookup.Service
}

func (s *httpServer) Run() error {
	slog.InfoContext(s.options.Context, "http server listening", "address", s.options.Address)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func NewServer(
	rt *router.Router,
	ann *annotate.Service,
	lk *lookup.Service,
	opts ...server.Option,
) server.Server {
	options := server.NewOptions(opts...)

	s := &httpServer{
		options:  options,
		router:   rt,
		annotate: ann,
		lookup:   lk,
	}

	m := mux.NewRouter()
	m.HandleFunc("/api/v1/annotate", s.handleAnnotate).Methods(http.MethodPost)
	m.HandleFunc("/api/v1/ask", s.handleAsk).Methods(http.MethodPost)
	m.HandleFunc("/api/v1/lookup", s.handleLookup).Methods(http.MethodPost)

	var handler http.Handler = m
	for i := len(options.Middleware) - 1; i >= 0; i-- {
		handler = options.Middleware[i](handler)
	}

	s.srv = &http.Server{
		Addr:         options.Address,
		Handler:      otelhttp.NewHandler(handler, "socagent"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	return s
}
