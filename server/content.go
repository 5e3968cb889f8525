package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social_dashboard/platform"
	"social_dashboard/publisher"
)

type contentReq struct {
	Platform string `json:"platform" binding:"required"`
	Text     string `json:"text"`
}

type variantsReq struct {
	Text      string   `json:"text"`
	Platforms []string `json:"platforms"`
}

type previewReq struct {
	Text string `json:"text"`
}

func (s *Server) handlePlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, platform.Profiles())
}

func (s *Server) handlePlatform(c *gin.Context) {
	prof, ok := platform.Lookup(c.Param("id"))
	if !ok {
		writeError(c, platform.Validate(c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, prof)
}

// handleAdapt is the "auto-optimize" action: adapt, then score and analyse.
func (s *Server) handleAdapt(c *gin.Context) {
	var req contentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	v, err := s.adapter.Variant(req.Platform, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	s.metrics.IncAdapt(req.Platform)
	c.JSON(http.StatusOK, v)
}

func (s *Server) handleScore(c *gin.Context) {
	var req contentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	score, err := platform.Score(req.Platform, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"platform": req.Platform, "score": score})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req contentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	v, err := platform.Evaluate(req.Platform, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// handleVariants adapts one text for several platforms; no platforms means all.
func (s *Server) handleVariants(c *gin.Context) {
	var req variantsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ids := req.Platforms
	if len(ids) == 0 {
		ids = platform.IDs()
	}
	if err := platform.Validate(ids...); err != nil {
		writeError(c, err)
		return
	}
	out := make([]platform.ContentVariant, 0, len(ids))
	for _, id := range ids {
		v, err := s.adapter.Variant(id, req.Text)
		if err != nil {
			writeError(c, err)
			return
		}
		s.metrics.IncAdapt(id)
		out = append(out, v)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePreview(c *gin.Context) {
	var req previewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	html, err := publisher.RenderPreview(req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": html})
}
