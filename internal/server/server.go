package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"

	"github.com/matthieukhl/axoshard/internal/auth"
	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/checkout"
	"github.com/matthieukhl/axoshard/internal/store"
	"github.com/matthieukhl/axoshard/internal/types"
)

// Deps are the services the HTTP surface delegates to.
type Deps struct {
	Store    store.Store
	Catalog  *catalog.Service
	Auth     *auth.Service
	Tokens   *auth.TokenIssuer
	Checkout *checkout.Orchestrator
	Images   types.ImageUploader
}

type Options struct {
	// ProtectAdminRoutes turns on the session and admin-flag check for
	// catalog and order administration.
	ProtectAdminRoutes bool
	SecureCookie       bool
}

type Server struct {
	router  *gin.Engine
	deps    Deps
	opts    Options
	query   *schema.Decoder
	httpSrv *http.Server
}

// NewServer creates a new server instance
func NewServer(deps Deps, opts Options) *Server {
	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20

	query := schema.NewDecoder()
	query.IgnoreUnknownKeys(true)

	server := &Server{
		router: router,
		deps:   deps,
		opts:   opts,
		query:  query,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)

		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)

		api.POST("/auth/signup", s.signup)
		api.POST("/auth/login", s.login)
		api.POST("/auth/logout", s.logout)
		api.GET("/auth/me", s.me)

		api.POST("/create-payment-intent", s.createPaymentIntent)
		api.POST("/orders", s.createOrder)
	}

	admin := api.Group("", s.requireAdmin)
	{
		admin.POST("/products", s.createProduct)
		admin.POST("/products/images", s.uploadImage)
		admin.PATCH("/products/:id", s.updateProduct)
		admin.PATCH("/products/:id/toggle", s.toggleProduct)
		admin.DELETE("/products/:id", s.deleteProduct)

		admin.POST("/auth/users/:id/promote", s.promoteUser)

		admin.GET("/orders", s.listOrders)
		admin.GET("/orders/:id", s.getOrder)
	}
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.deps.Store.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "axoshard",
		"version": "0.1.0",
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown waits for in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
