// Package web provides the HTTP server of the command queue.
// It uses Gin framework for routing and middleware.
package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// Server represents the web server
type Server struct {
	engine     *gin.Engine
	webhookURL string
	httpServer *http.Server
	client     *http.Client
}

var (
	server *Server
)

// Init initializes the global web server
func Init(webhookURL string) *Server {
	server = NewServer(webhookURL)
	return server
}

// Get returns the global web server
func Get() *Server {
	return server
}

// NewServer creates a new web server
func NewServer(webhookURL string) *Server {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	s := &Server{
		engine:     engine,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}

	// Apply middlewares
	s.engine.Use(TraceID())
	s.engine.Use(Recovery())
	s.engine.Use(s.logsMiddleware())

	// Set up error handlers
	s.setupErrorHandlers()

	return s
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ServeHTTP lets the server be used directly as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// logsMiddleware logs every request and mirrors it to the web server webhook
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		msg := fmt.Sprintf("%s %s -> %d (%v) [%s]", c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond), GetTraceID(c))
		if status >= http.StatusInternalServerError {
			logger.Error(msg, "WebServer")
		} else {
			logger.Debug(msg, "WebServer")
		}

		if s.webhookURL != "" {
			entry := requestLog{
				Method:  c.Request.Method,
				Path:    c.Request.URL.Path,
				IP:      c.ClientIP(),
				Status:  status,
				TraceID: GetTraceID(c),
			}
			go s.sendLogToWebhook(entry)
		}
	}
}

type requestLog struct {
	Method  string
	Path    string
	IP      string
	Status  int
	TraceID string
}

// sendLogToWebhook sends a request summary to the Discord webhook.
// Query strings are never included since they may carry the shared secret.
func (s *Server) sendLogToWebhook(entry requestLog) {
	color := 0x00AE86 // Green
	if entry.Status == http.StatusUnauthorized {
		color = 0xFFA500 // Orange
	} else if entry.Status >= http.StatusInternalServerError {
		color = 0xFF0000
	}

	embed := map[string]interface{}{
		"title": fmt.Sprintf("💫 | %s %s", entry.Method, entry.Path),
		"description": fmt.Sprintf(
			"> **Status:** `%d`\n> **IP:** `%s`\n> **Trace:** `%s`",
			entry.Status,
			entry.IP,
			entry.TraceID,
		),
		"color":     color,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	s.engine.HandleMethodNotAllowed = true

	// 404 handler
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "The requested route does not exist.",
			"status":  404,
		})
	})

	// 405 handler
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "The HTTP method is not allowed for this route.",
			"status":  405,
		})
	})
}

// Start starts the web server and blocks until it stops
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(fmt.Sprintf("🚀 Server listening on http://localhost:%s", port), "WebServer")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(port string) {
	go func() {
		if err := s.Start(port); err != nil {
			logger.Error(fmt.Sprintf("Error starting web server: %v", err), "WebServer")
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router helper methods

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}

// POST registers a POST route
func (s *Server) POST(path string, handlers ...gin.HandlerFunc) {
	s.engine.POST(path, handlers...)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}
