package httpserver

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/batch"
	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/textproc"
)

const (
	detailMissingInput    = "Envie um texto ou um arquivo .txt/.pdf."
	detailUnsupportedFile = "Formato não suportado. Envie .txt ou .pdf."
	detailEmptyContent    = "Conteúdo vazio."
	detailNoValidItems    = "Nenhum item válido para analisar. Verifique se os arquivos são .txt/.pdf válidos e contêm texto."
)

// Server is the HTTP transport for the triage pipeline.
type Server struct {
	engine     *gin.Engine
	srv        *http.Server
	svc        *core.TriageService
	orch       *batch.Orchestrator
	decoder    *textproc.Decoder
	logger     *zap.Logger
	listenAddr string
}

// NewServer creates the HTTP transport and registers its routes.
func NewServer(
	svc *core.TriageService,
	orch *batch.Orchestrator,
	decoder *textproc.Decoder,
	logger *zap.Logger,
	listenAddr string,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"*"}
	engine.Use(cors.New(corsCfg))

	s := &Server{
		engine:     engine,
		svc:        svc,
		orch:       orch,
		decoder:    decoder,
		logger:     logger,
		listenAddr: listenAddr,
	}

	engine.GET("/health", s.handleHealth)
	api := engine.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/analyze_batch", s.handleAnalyzeBatch)

	return s
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:    s.listenAddr,
		Handler: s.engine,
	}

	s.logger.Info("HTTP server starting", zap.String("address", s.listenAddr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  s.svc.ModelID(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	text := c.PostForm("text")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fileHeader = nil
	}

	if text == "" && fileHeader == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailMissingInput})
		return
	}

	var raw string
	if fileHeader != nil {
		if !textproc.SupportedFile(fileHeader.Filename) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"detail": detailUnsupportedFile})
			return
		}
		data, err := readUpload(fileHeader)
		if err != nil {
			s.logger.Error("Failed to read uploaded file",
				zap.String("filename", fileHeader.Filename),
				zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyContent})
			return
		}
		raw = s.decoder.Decode(fileHeader.Filename, data)
	} else {
		raw = text
	}

	content := textproc.Clean(raw)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyContent})
		return
	}

	result, err := s.svc.Classify(c.Request.Context(), content)
	if err != nil {
		s.logger.Error("Classification failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyzeBatch(c *gin.Context) {
	textsJSON := c.PostForm("texts")

	var files []batch.File
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["files"] {
			data, err := readUpload(fh)
			if err != nil {
				s.logger.Warn("Failed to read uploaded batch file",
					zap.String("filename", fh.Filename),
					zap.Error(err))
				continue
			}
			files = append(files, batch.File{Name: fh.Filename, Data: data})
		}
	}

	results, err := s.orch.Run(c.Request.Context(), textsJSON, files)
	if err != nil {
		switch {
		case errors.Is(err, batch.ErrInvalidTexts):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		case errors.Is(err, batch.ErrNoValidItems):
			c.JSON(http.StatusBadRequest, gin.H{"detail": detailNoValidItems})
		default:
			s.logger.Error("Batch processing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
