// Package server exposes the three rig operations over HTTP for editors that
// prefer a long-lived process to shelling out per call.
package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"spinestudio/pkg/flight"
	"spinestudio/pkg/rig"
)

// Operations is the studio surface the server needs.
type Operations interface {
	Analyze(ctx context.Context, imagePath string) (*rig.Analysis, error)
	Refine(ctx context.Context, imagePath string, anchors []rig.Anchor) (*rig.Refinement, error)
	Regenerate(ctx context.Context, imagePath string, anchors []rig.Anchor, bones []rig.Bone) (*rig.AnimationSet, error)
}

type Server struct {
	Echo   *echo.Echo
	Studio Operations
	Ctx    context.Context

	// detect coalesces and caches analysis results per image path; detection
	// is by far the most expensive call and editors tend to repeat it.
	detect *flight.Cache[string, *rig.Analysis]
}

func NewServer(ctx context.Context, ops Operations) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:   e,
		Studio: ops,
		Ctx:    ctx,
	}
	s.detect = flight.New(func(imagePath string) (*rig.Analysis, error) {
		return s.Studio.Analyze(s.Ctx, imagePath)
	}, time.Hour)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/detect", s.handlePostDetect)         // image analysis -> rig.Analysis
	api.POST("/refine", s.handlePostRefine)         // anchor correction -> rig.Refinement
	api.POST("/regenerate", s.handlePostRegenerate) // animation regeneration -> rig.AnimationSet
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
