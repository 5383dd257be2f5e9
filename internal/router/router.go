package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	appointmenthandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/appointment"
	doctorhandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/doctor"
	healthhandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/health"
	notificationhandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/notification"
	prescriptionhandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/prescription"
	reviewhandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/review"
	schedulehandler "github.com/nguyenduchuy271197/healthcare-sub000/internal/handler/schedule"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/middleware"
)

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	healthH       *healthhandler.Handler
	doctorH       *doctorhandler.Handler
	appointmentH  *appointmenthandler.Handler
	scheduleH     *schedulehandler.Handler
	reviewH       *reviewhandler.Handler
	prescriptionH *prescriptionhandler.Handler
	notificationH *notificationhandler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimit  float64
	RateBurst  int
	CORSConfig middleware.CORSConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH *healthhandler.Handler,
	doctorH *doctorhandler.Handler,
	appointmentH *appointmenthandler.Handler,
	scheduleH *schedulehandler.Handler,
	reviewH *reviewhandler.Handler,
	prescriptionH *prescriptionhandler.Handler,
	notificationH *notificationhandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		healthH:       healthH,
		doctorH:       doctorH,
		appointmentH:  appointmentH,
		scheduleH:     scheduleH,
		reviewH:       reviewH,
		prescriptionH: prescriptionH,
		notificationH: notificationH,
		metrics:       initRouterMetrics(),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(config.RateLimit),
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)

	// Public routes: doctor directory and slot availability.
	r.doctorH.RegisterRoutes(api)
	r.appointmentH.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.appointmentH.RegisterRoutes(protected)
	r.scheduleH.RegisterRoutes(protected)
	r.reviewH.RegisterRoutes(protected)
	r.prescriptionH.RegisterRoutes(protected)
	r.notificationH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
