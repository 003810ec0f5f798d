package httpserver

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PratikDhanave/booking-conversion-relay/internal/auth"
	"github.com/PratikDhanave/booking-conversion-relay/internal/config"
	"github.com/PratikDhanave/booking-conversion-relay/internal/handlers"
	"github.com/PratikDhanave/booking-conversion-relay/internal/metrics"
)

// maxBodyBytes caps inbound JSON bodies.
const maxBodyBytes = 1 << 20 // 1 MiB

// Deps are the collaborators the router wires into handlers.
// Metrics and Gatherer are optional.
type Deps struct {
	Webhook  handlers.WebhookDeps
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter wires public endpoints and the authenticated webhook.
// Public: /health, /metrics, /register_event
// Authenticated: /ghl-webhook
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false})
	}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	// The booking page posts from another origin; any origin and any
	// requested header are reflected.
	r.Use(reflectRequestedHeaders())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	r.Use(limitBody(maxBodyBytes))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	handlers.RegisterRegistrationRoutes(r, deps.Webhook.Store, deps.Webhook.Now)

	// Webhook group enforces the shared secret.
	hookGroup := r.Group("/")
	hookGroup.Use(auth.WebhookTokenMiddleware(cfg.WebhookSecret))

	handlers.RegisterWebhookRoutes(hookGroup, deps.Webhook)

	return r
}

// reflectRequestedHeaders echoes a preflight's Access-Control-Request-Headers.
// cors leaves Access-Control-Allow-Headers alone when AllowHeaders is empty.
func reflectRequestedHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			if h := c.GetHeader("Access-Control-Request-Headers"); h != "" {
				c.Header("Access-Control-Allow-Headers", h)
			}
		}
		c.Next()
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
