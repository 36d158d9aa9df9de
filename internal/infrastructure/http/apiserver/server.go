// Package apiserver wires the chi router of the JSON API and runs it
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pantrysense/v2/internal/infrastructure/http/handlers"
	"github.com/pantrysense/v2/internal/infrastructure/http/middleware"
	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	apperrors "github.com/pantrysense/v2/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Config holds listener and middleware settings
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	RequestTimeout   time.Duration
	CompressionLevel int
	EnableH2C        bool
	CORS             middleware.CORSConfig
	RateLimit        middleware.RateLimitConfig
}

// Services are the use cases the API exposes
type Services struct {
	Auth        inbound.AuthService
	Inventory   inbound.InventoryService
	Usage       inbound.UsageService
	Recipes     inbound.RecipeService
	Shopping    inbound.ShoppingService
	Preferences inbound.PreferencesService
	Captures    inbound.CaptureService
}

// Server is the public JSON API server
type Server struct {
	cfg      Config
	logger   *zap.Logger
	services Services
	metrics  *middleware.Metrics
	router   chi.Router
	server   *http.Server
}

// New builds the router and the http.Server. metrics may be nil.
func New(cfg Config, services Services, metrics *middleware.Metrics, logger *zap.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.CompressionLevel <= 0 {
		cfg.CompressionLevel = 5
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger.Named("api-server"),
		services: services,
		metrics:  metrics,
	}
	s.router = s.routes()

	var handler http.Handler = s.router
	handler = otelhttp.NewHandler(handler, "api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	if cfg.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recoverer(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Handler)
	}
	r.Use(middleware.Security)
	r.Use(middleware.CORS(s.cfg.CORS))
	r.Use(middleware.NewRateLimiter(s.cfg.RateLimit).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, nil, apperrors.NewAppError(apperrors.CodeNotFound, "Route not found", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed, response.APIResponse{Success: false, Message: "Method not allowed"})
	})

	authH := handlers.NewAuthHandlers(s.services.Auth, s.logger)
	invH := handlers.NewInventoryHandlers(s.services.Inventory, s.services.Usage, s.logger)
	streamH := handlers.NewStreamHandler(s.services.Inventory, s.cfg.CORS.AllowedOrigins, s.logger)
	recipeH := handlers.NewRecipeHandlers(s.services.Recipes, s.logger)
	cartH := handlers.NewCartHandlers(s.services.Shopping, s.logger)
	prefH := handlers.NewPreferenceHandlers(s.services.Preferences, s.logger)
	captureH := handlers.NewCaptureHandlers(s.services.Captures, s.logger)
	authenticate := middleware.Authenticate(s.services.Auth, s.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/openapi.yaml", serveOpenAPISpec)
		r.Get("/docs", serveDocs)

		// The stream is long-lived: no timeout and no compression
		r.With(authenticate).Get("/inventory/stream", streamH.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
			r.Use(middleware.Compress(s.cfg.CompressionLevel))

			r.Group(func(r chi.Router) {
				r.Use(middleware.JSONBody)
				r.Post("/auth/signup", authH.SignUp)
				r.Post("/auth/signin", authH.SignIn)
			})
			r.Get("/delivery/partners", cartH.Partners)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Post("/captures", captureH.Upload)
				r.Get("/captures", captureH.List)
				r.Delete("/captures/{id}", captureH.Delete)

				r.Group(func(r chi.Router) {
					r.Use(middleware.JSONBody)

					r.Post("/auth/signout", authH.SignOut)
					r.Get("/auth/me", authH.Me)

					r.Get("/inventory", invH.List)
					r.Get("/inventory/categories", invH.Categories)
					r.Get("/inventory/low-stock", invH.LowStock)
					r.Get("/inventory/{id}", invH.Get)
					r.Get("/inventory/{id}/usage", invH.Usage)
					r.Post("/inventory/{id}/threshold", invH.Threshold)

					r.Route("/recipes", func(r chi.Router) {
						r.Get("/", recipeH.List)
						r.Post("/generate", recipeH.Generate)
						r.Post("/suggestion", recipeH.Suggest)
						r.Get("/{id}", recipeH.Get)
					})

					r.Route("/cart", func(r chi.Router) {
						r.Get("/", cartH.Get)
						r.Post("/items/{id}", cartH.Add)
						r.Delete("/items/{id}", cartH.Remove)
						r.Post("/items/{id}/increment", cartH.Increment)
						r.Post("/items/{id}/decrement", cartH.Decrement)
						r.Get("/checkout/{partner}", cartH.Checkout)
					})

					r.Get("/preferences", prefH.Get)
					r.Put("/preferences", prefH.Update)
				})
			})
		})
	})

	return r
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens in the background. Listener errors are returned
// synchronously; serve errors after that are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("Starting API server",
		zap.String("address", ln.Addr().String()),
		zap.Bool("h2c", s.cfg.EnableH2C),
	)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
