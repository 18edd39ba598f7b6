// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/app/handlers"
	"github.com/amirphl/radio-contracts/app/middleware"
	businessflow "github.com/amirphl/radio-contracts/business_flow"
	"github.com/amirphl/radio-contracts/config"
	"github.com/amirphl/radio-contracts/docs"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth      handlers.AuthHandlerInterface
	User      *handlers.UserHandler
	Client    *handlers.ClientHandler
	Contract  *handlers.ContractHandler
	Reference *handlers.ReferenceHandler
}

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app          *fiber.App
	cfg          *config.ProductionConfig
	handlers     Handlers
	auth         *middleware.AuthMiddleware
	healthChecks map[string]HealthCheck
	accessLog    io.Writer
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, auth *middleware.AuthMiddleware, healthChecks map[string]HealthCheck, accessLog io.Writer) *FiberRouter {
	app := fiber.New(fiber.Config{
		AppName:      "Radio Contracts API",
		ServerHeader: "radio-contracts",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
	})

	return &FiberRouter{
		app:          app,
		cfg:          cfg,
		handlers:     h,
		auth:         auth,
		healthChecks: healthChecks,
		accessLog:    accessLog,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Info().Msg("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, middleware.MetricsHandler())
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.cfg.Deployment.IsDevelopment() {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		log.Info().Msg("API documentation enabled for development")
	}

	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	authenticate := r.auth.Authenticate()
	capability := middleware.RequireCapability

	// Auth routes with stricter rate limiting on login
	auth := api.Group("/auth")
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        r.cfg.Security.AuthRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}), r.handlers.Auth.Login)
	auth.Post("/register", authenticate, capability(businessflow.CapAuthRegister), r.handlers.Auth.Register)
	auth.Get("/profile", authenticate, r.handlers.Auth.GetProfile)
	auth.Put("/profile", authenticate, r.handlers.Auth.UpdateProfile)
	auth.Put("/change-password", authenticate, r.handlers.Auth.ChangePassword)
	auth.Post("/logout", authenticate, r.handlers.Auth.Logout)

	users := api.Group("/users", authenticate)
	users.Get("/", capability(businessflow.CapUsersList), r.handlers.User.ListUsers)
	users.Get("/locutors", capability(businessflow.CapUsersLocutors), r.handlers.User.ListLocutors)
	users.Get("/:id", capability(businessflow.CapUsersGet), r.handlers.User.GetUser)
	users.Post("/", capability(businessflow.CapUsersCreate), r.handlers.User.CreateUser)
	users.Put("/:id", capability(businessflow.CapUsersUpdate), r.handlers.User.UpdateUser)
	users.Delete("/:id", capability(businessflow.CapUsersDelete), r.handlers.User.DeleteUser)
	users.Put("/:id/reset-password", capability(businessflow.CapUsersResetPassword), r.handlers.User.ResetPassword)

	clients := api.Group("/clients", authenticate)
	clients.Get("/", capability(businessflow.CapClientsList), r.handlers.Client.ListClients)
	clients.Get("/:id/stats", capability(businessflow.CapClientsStats), r.handlers.Client.ClientStats)
	clients.Get("/:id", capability(businessflow.CapClientsGet), r.handlers.Client.GetClient)
	clients.Post("/", capability(businessflow.CapClientsCreate), r.handlers.Client.CreateClient)
	clients.Put("/:id", capability(businessflow.CapClientsUpdate), r.handlers.Client.UpdateClient)
	clients.Delete("/:id", capability(businessflow.CapClientsDelete), r.handlers.Client.DeleteClient)

	contracts := api.Group("/contracts", authenticate)
	contracts.Get("/", capability(businessflow.CapContractsList), r.handlers.Contract.ListContracts)
	contracts.Get("/stats", capability(businessflow.CapContractsStats), r.handlers.Contract.ContractStats)
	contracts.Get("/export", capability(businessflow.CapContractsExport), r.handlers.Contract.ExportContracts)
	contracts.Get("/:id", capability(businessflow.CapContractsGet), r.handlers.Contract.GetContract)
	contracts.Post("/", capability(businessflow.CapContractsCreate), r.handlers.Contract.CreateContract)
	contracts.Put("/:id", capability(businessflow.CapContractsUpdate), r.handlers.Contract.UpdateContract)
	contracts.Put("/:id/approve", capability(businessflow.CapContractsApprove), r.handlers.Contract.ApproveContract)
	contracts.Put("/:id/complete", capability(businessflow.CapContractsComplete), r.handlers.Contract.CompleteContract)
	contracts.Put("/:id/cancel", capability(businessflow.CapContractsCancel), r.handlers.Contract.CancelContract)
	contracts.Delete("/:id", capability(businessflow.CapContractsDelete), r.handlers.Contract.DeleteContract)

	api.Get("/programs", authenticate, capability(businessflow.CapProgramsList), r.handlers.Reference.ListPrograms)
	api.Get("/ad-types", authenticate, capability(businessflow.CapAdTypesList), r.handlers.Reference.ListAdTypes)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Info().Msg("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Error().
				Str("request_id", requestid.FromContext(c)).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Str("ip", c.IP()).
				Interface("panic", e).
				Msg("panic recovered")
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             r.cfg.Security.XFrameOptions,
		HSTSMaxAge:                r.cfg.Security.HSTSMaxAge,
		ContentSecurityPolicy:     r.cfg.Security.CSPPolicy,
		ReferrerPolicy:            r.cfg.Security.ReferrerPolicy,
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", fiber.HeaderContentDisposition},
		AllowCredentials: r.cfg.Security.AllowCredentials && !containsWildcard(r.cfg.Security.AllowedOrigins),
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}))
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     r.accessLog,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health" || c.Path() == r.cfg.Metrics.Path
			},
		}))
	}

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Info().Str("address", address).Msg("Starting server")
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// healthCheck pings every registered dependency
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(r.healthChecks))
	for name := range r.healthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := fiber.Map{}
	healthy := true
	for _, name := range names {
		if err := r.healthChecks[name](ctx); err != nil {
			healthy = false
			checks[name] = "unavailable"
			log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			continue
		}
		checks[name] = "ok"
	}

	data := fiber.Map{
		"status":    "ok",
		"timestamp": utils.UTCNow().Unix(),
		"version":   r.cfg.Deployment.Version,
		"service":   "radio-contracts-api",
		"checks":    checks,
	}

	if !healthy {
		data["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.APIResponse{
			Success: false,
			Message: "Service is unhealthy",
			Data:    data,
			Error:   dto.ErrorDetail{Code: "SERVICE_UNAVAILABLE"},
		})
	}

	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data:    data,
	})
}

// serveSwaggerJSON serves the registered OpenAPI document
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}

// serveSwaggerUI serves a Swagger UI page pointing at the JSON document
func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(swaggerUIPage)
}

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Radio Contracts API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			message = fe.Message
			errorCode = strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
		}
	}

	requestID := requestid.FromContext(c)
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Int("status", code).Str("request_id", requestID).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
