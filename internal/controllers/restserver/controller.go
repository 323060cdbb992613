// Package restserver serves the exporter's latest documents, run status and
// Prometheus metrics over HTTP.
package restserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	Server   http.Server
	state    *State
	metrics  http.Handler
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new REST server controller. metrics may be nil,
// in which case /metrics is not served.
func NewController(ctx context.Context, wg *sync.WaitGroup, listenAddr string, state *State, metrics http.Handler, logger *zap.SugaredLogger) *Controller {
	ctrl := &Controller{
		ctx:     ctx,
		wg:      wg,
		state:   state,
		metrics: metrics,
		logger:  logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = listenAddr
	ctrl.Server.Handler = ctrl.Router()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second
	return ctrl
}

// StartController starts the REST server and stops it when the context ends
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(2)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Router configures the HTTP router with all endpoints
func (c *Controller) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/metrics", c.handlers.ListMetrics).Methods(http.MethodGet)
	router.HandleFunc("/api/metrics/{name}", c.handlers.GetMetric).Methods(http.MethodGet)

	if c.metrics != nil {
		router.Handle("/metrics", c.metrics).Methods(http.MethodGet)
	}

	return handlers.RecoveryHandler()(
		handlers.CORS(handlers.AllowedOrigins([]string{"*"}))(
			handlers.CompressHandler(router),
		),
	)
}
