package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"spinestudio/pkg/rig"
)

type detectRequest struct {
	Image string `json:"image"`
	Force bool   `json:"force,omitempty"`
}

type refineRequest struct {
	Image   string       `json:"image"`
	Anchors []rig.Anchor `json:"anchors"`
}

type regenerateRequest struct {
	Image   string       `json:"image"`
	Anchors []rig.Anchor `json:"anchors"`
	Bones   []rig.Bone   `json:"bones"`
}

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Spine Studio API",
		"status":  "ok",
	})
}

// POST /api/detect
func (s *Server) handlePostDetect(c echo.Context) error {
	var req detectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.Image == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image path is required")
	}

	var analysis *rig.Analysis
	var err error
	if req.Force {
		analysis, err = s.detect.Force(req.Image)
	} else {
		analysis, err = s.detect.Get(req.Image)
	}
	if err != nil {
		log.Error("detect failed", "image", req.Image, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, rig.Fail(err))
	}
	return c.JSON(http.StatusOK, analysis)
}

// POST /api/refine
func (s *Server) handlePostRefine(c echo.Context) error {
	var req refineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.Image == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image path is required")
	}

	refinement, err := s.Studio.Refine(c.Request().Context(), req.Image, req.Anchors)
	if err != nil {
		log.Error("refine failed", "image", req.Image, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, rig.Fail(err))
	}
	return c.JSON(http.StatusOK, refinement)
}

// POST /api/regenerate
func (s *Server) handlePostRegenerate(c echo.Context) error {
	var req regenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if req.Image == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image path is required")
	}

	set, err := s.Studio.Regenerate(c.Request().Context(), req.Image, req.Anchors, req.Bones)
	if err != nil {
		log.Error("regenerate failed", "image", req.Image, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, rig.Fail(err))
	}
	return c.JSON(http.StatusOK, set)
}
