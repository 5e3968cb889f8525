package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"social_dashboard/analytics"
	"social_dashboard/export"
	"social_dashboard/store"
)

// publishTimeout bounds a manual publish request across all its platforms.
const publishTimeout = 2 * time.Minute

type createPostReq struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Platforms   []string          `json:"platforms"`
	Variants    map[string]string `json:"variants"`
	AutoAdapt   bool              `json:"auto_adapt"`
	ScheduledAt *time.Time        `json:"scheduled_at"`
}

type scheduleReq struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func (s *Server) handleListPosts(c *gin.Context) {
	f := store.Filter{Status: store.Status(c.Query("status")), Platform: c.Query("platform")}
	switch f.Status {
	case "", store.StatusDraft, store.StatusScheduled, store.StatusPublishing, store.StatusPublished, store.StatusFailed:
	default:
		badRequest(c, fmt.Sprintf("unknown status %q", f.Status))
		return
	}
	c.JSON(http.StatusOK, s.store.List(f))
}

// handleCreatePost stores a draft. With auto_adapt every platform without a
// hand-written variant gets an adapted one; with scheduled_at it is scheduled
// right away.
func (s *Server) handleCreatePost(c *gin.Context) {
	var req createPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	post := store.Post{
		Title:     req.Title,
		Content:   req.Content,
		Platforms: req.Platforms,
		Variants:  req.Variants,
	}
	if req.AutoAdapt {
		if post.Variants == nil {
			post.Variants = make(map[string]string, len(req.Platforms))
		}
		for _, id := range req.Platforms {
			if post.Variants[id] != "" {
				continue
			}
			text, err := s.adapter.Adapt(id, req.Content)
			if err != nil {
				writeError(c, err)
				return
			}
			s.metrics.IncAdapt(id)
			post.Variants[id] = text
		}
	}

	created, err := s.store.Create(post)
	if err != nil {
		writeError(c, err)
		return
	}
	if req.ScheduledAt != nil {
		scheduled, err := s.store.Schedule(created.ID, *req.ScheduledAt)
		if err != nil {
			_ = s.store.Delete(created.ID)
			writeError(c, err)
			return
		}
		created = scheduled
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleUpdatePost(c *gin.Context) {
	var patch store.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	post, err := s.store.Update(c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleDeletePost(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSchedulePost(c *gin.Context) {
	var req scheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	post, err := s.store.Schedule(c.Param("id"), req.ScheduledAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleUnschedulePost(c *gin.Context) {
	post, err := s.store.Unschedule(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handlePublishPost(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), publishTimeout)
	defer cancel()
	post, err := s.publisher.Publish(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, analytics.Summarize(s.store.List(store.Filter{})))
}

func (s *Server) handleRefreshAnalytics(c *gin.Context) {
	n := s.simulator.Refresh(s.store)
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		writeError(c, err)
		return
	}
	posts := s.store.List(store.Filter{Status: store.Status(c.Query("status"))})
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename(time.Now())))
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, posts); err != nil {
		_ = c.Error(err)
		s.logger.WithError(err).Error("Export failed")
	}
}

func (s *Server) handleListJobs(c *gin.Context) {
	if s.jobs == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, s.jobs.ListJobs())
}

func (s *Server) handleRunJob(c *gin.Context) {
	name := c.Param("name")
	if s.jobs == nil || !s.hasJob(name) {
		writeError(c, fmt.Errorf("%w: %s", errJobNotFound, name))
		return
	}
	if err := s.jobs.RunNow(c.Request.Context(), name); err != nil {
		if errors.Is(err, context.Canceled) {
			c.Status(499)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": name, "status": "completed"})
}

func (s *Server) hasJob(name string) bool {
	for _, j := range s.jobs.ListJobs() {
		if j.Name == name {
			return true
		}
	}
	return false
}
