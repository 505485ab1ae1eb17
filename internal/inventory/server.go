package inventory

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/assetdesk/assetdesk/internal/model"
)

// Backend is the store contract the HTTP API serves.
type Backend interface {
	model.Inventory
	Ping(ctx context.Context) error
	Attachment(ctx context.Context, id int64) (model.Attachment, error)
	SaveAttachment(ctx context.Context, assetID int64, filename, mimeType string, data []byte) (model.Attachment, error)
	MaintenanceRecord(ctx context.Context, id int64) (model.MaintenanceRecord, error)
}

var _ Backend = (*Store)(nil)

// Server exposes a Backend as the inventory REST API.
type Server struct {
	addr      string
	store     Backend
	tracer    oteltrace.Tracer
	debug     bool
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithTracer records a server span per request.
func WithTracer(t oteltrace.Tracer) ServerOption {
	return func(s *Server) { s.tracer = t }
}

// WithDebug enables gin's debug mode and request logging.
func WithDebug(debug bool) ServerOption {
	return func(s *Server) { s.debug = debug }
}

// NewServer creates a server for store listening on addr.
func NewServer(addr string, store Backend, opts ...ServerOption) *Server {
	if addr == "" {
		addr = model.DefaultStubAddr
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:      addr,
		store:     store,
		tracer:    noop.NewTracerProvider().Tracer("assetdesk/inventory"),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() *gin.Engine {
	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if s.debug {
		r.Use(gin.Logger())
	}
	r.Use(s.traceRequests())

	r.GET("/api/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	mountCollection(v1.Group("/assets"), s.store.Assets(), "status", "category_id", "location_id", "department_id")
	mountCollection(v1.Group("/categories"), s.store.Categories())
	mountCollection(v1.Group("/locations"), s.store.Locations())
	mountCollection(v1.Group("/departments"), s.store.Departments())
	mountCollection(v1.Group("/vendors"), s.store.Vendors())

	v1.POST("/assets/:id/assign", s.handleAssign)
	v1.POST("/assets/:id/return", s.handleReturn)
	v1.GET("/assets/:id/qrcode", s.handleQRCode)

	v1.GET("/assets/:id/attachments", s.handleListAttachments)
	v1.POST("/assets/:id/attachments", s.handleUpload)
	v1.GET("/attachments/:id", s.handleDownload)
	v1.DELETE("/attachments/:id", s.handleDeleteAttachment)

	v1.GET("/assets/:id/depreciation", s.handleDepreciationHistory)
	v1.POST("/assets/:id/depreciation", s.handleCalculateDepreciation)
	v1.GET("/reports/depreciation", s.handleDepreciationReport)

	m := v1.Group("/maintenance")
	m.GET("/upcoming", s.handleUpcoming)
	m.GET("/assets/:id/maintenance", s.handleListRecords)
	m.POST("/assets/:id/maintenance", s.handleCreateRecord)
	m.GET("/records/:id", s.handleGetRecord)
	m.PUT("/records/:id", s.handleUpdateRecord)
	m.DELETE("/records/:id", s.handleDeleteRecord)
	m.GET("/assets/:id/schedules", s.handleListSchedules)
	m.POST("/assets/:id/schedules", s.handleCreateSchedule)
	m.PUT("/schedules/:id", s.handleUpdateSchedule)
	m.DELETE("/schedules/:id", s.handleDeleteSchedule)

	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Addr returns the listen address, resolved once started.
func (s *Server) Addr() string { return s.addr }

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) traceRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := s.tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			oteltrace.WithSpanKind(oteltrace.SpanKindServer),
			oteltrace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if err := s.store.Ping(c.Request.Context()); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"uptime": time.Since(s.startTime).String(),
	})
}
