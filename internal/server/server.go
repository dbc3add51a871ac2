package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/annotator/internal/config"
	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/logger"
	"github.com/agenthands/annotator/internal/queue"
)

const keyHeader = "X-Annotator-Key"

type Server struct {
	Broker         queue.Broker
	Config         config.ServerConfig
	DefaultTimeout time.Duration
	Log            *logger.Logger
	UUIDGenerator  func() string
	Now            func() time.Time
}

func NewServer(broker queue.Broker, cfg config.ServerConfig, defaultTimeout time.Duration, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		Broker:         broker,
		Config:         cfg,
		DefaultTimeout: defaultTimeout,
		Log:            log.With("service", "JobAPI"),
		UUIDGenerator:  func() string { return uuid.New().String() },
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	if len(s.Config.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.Config.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", keyHeader},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.POST("/run", s.Run)
	r.GET("/status/:task_id", s.Status)
	r.GET("/healthz", s.Health)

	return r
}

type RunRequest struct {
	Data     []model.Edge `json:"data" binding:"required,dive"`
	Directed bool         `json:"directed"`
	// Timeout is the reasoner poll timeout in seconds; 0 uses the server default.
	Timeout float64 `json:"timeout" binding:"gte=0,lte=604800"`
}

func (s *Server) Run(c *gin.Context) {
	if s.Config.RequireKey && !s.authorized(c.GetHeader(keyHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid key"})
		return
	}

	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "detail": err.Error()})
		return
	}

	timeout := s.DefaultTimeout
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout * float64(time.Second))
	}

	task := queue.Task{
		ID:         s.UUIDGenerator(),
		Edges:      req.Data,
		Directed:   req.Directed,
		Timeout:    timeout,
		EnqueuedAt: s.Now(),
	}
	if err := s.Broker.Enqueue(c.Request.Context(), task); err != nil {
		s.Log.Error("failed to enqueue task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue task"})
		return
	}

	s.Log.Info("task accepted", "task_id", task.ID, "edges", len(task.Edges), "directed", task.Directed)
	c.JSON(http.StatusOK, gin.H{"task_id": task.ID})
}

// StatusResponse keeps task_result as the bare edge list; evidence_status
// tells "no evidence" apart from "the reasoner did not finish".
type StatusResponse struct {
	TaskID         string               `json:"task_id"`
	TaskStatus     queue.Status         `json:"task_status"`
	TaskResult     interface{}          `json:"task_result"`
	EvidenceStatus model.EvidenceStatus `json:"evidence_status,omitempty"`
	Message        *string              `json:"message,omitempty"`
}

func (s *Server) Status(c *gin.Context) {
	id := c.Param("task_id")

	state, err := s.Broker.State(c.Request.Context(), id)
	if err != nil {
		s.Log.Error("failed to load task state", "task_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load task"})
		return
	}

	resp := StatusResponse{TaskID: id, TaskStatus: state.Status}
	switch state.Status {
	case queue.StatusSuccess:
		if state.Result != nil {
			resp.TaskResult = state.Result.Edges
			resp.EvidenceStatus = state.Result.Status
			resp.Message = state.Result.Reasoner.Message
		}
	case queue.StatusFailure:
		resp.TaskResult = state.Error
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) Health(c *gin.Context) {
	if err := s.Broker.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) authorized(key string) bool {
	if s.Config.SecretKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.Config.SecretKey)) == 1
}
