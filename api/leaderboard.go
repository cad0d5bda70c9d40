package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetLeaderboard(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	spec := strings.TrimSpace(c.Query("spec"))
	if spec == "" {
		respondError(c, http.StatusBadRequest, errors.New("spec is required"))
		return
	}

	limit, err := parseLimitParam(c.Query("limit"), 20)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	entries, err := s.lbStore.GetLeaderboard(c.Request.Context(), spec, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleGetModelHistory(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	model := strings.TrimSpace(c.Query("model"))
	spec := strings.TrimSpace(c.Query("spec"))
	if model == "" || spec == "" {
		respondError(c, http.StatusBadRequest, errors.New("model and spec are required"))
		return
	}

	entries, err := s.lbStore.GetModelHistory(c.Request.Context(), model, spec)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
