// Package server exposes the wizard over a JSON HTTP API for the browser
// front end.
package server

import (
	"aulaplan/internal/logger"
	"aulaplan/internal/wizard"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Service        *wizard.Service
	Log            *logger.Logger
	MaxUploadBytes int64
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	h := NewHandler(cfg.Service, cfg.Log, cfg.MaxUploadBytes)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Log))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		// Curricula
		api.POST("/curricula", h.UploadCurriculum)
		api.GET("/curricula/:id", h.GetCurriculum)
		api.POST("/curricula/:id/analyze", h.AnalyzeCurriculum)

		// Documents
		api.GET("/documents", h.ListDocuments)
		api.POST("/documents", h.CreateDocument)
		api.GET("/documents/:id", h.GetDocument)
		api.PUT("/documents/:id", h.SaveDocument)
		api.POST("/documents/:id/refine", h.RefineDocument)
		api.GET("/documents/:id/revisions", h.ListRevisions)
		api.GET("/documents/:id/revisions/:seq", h.GetRevision)
		api.GET("/documents/:id/diff", h.DiffDocument)
		api.GET("/documents/:id/export", h.ExportDocument)

		// Sections
		api.GET("/documents/:id/sections", h.ListSections)
		api.PUT("/documents/:id/sections/:sid", h.UpdateSection)
		api.GET("/documents/:id/sections/:sid/sda", h.GetRecord)
		api.PUT("/documents/:id/sections/:sid/sda", h.UpdateRecord)
		api.POST("/documents/:id/sections/:sid/sda/activities", h.AddActivity)
		api.DELETE("/documents/:id/sections/:sid/sda/activities/:index", h.RemoveActivity)
	}
	return r
}

type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

func (s *Server) Run(address string) error {
	return s.Engine.Run(address)
}
