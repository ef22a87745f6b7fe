package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wikihop/wikihop/internal/search"
	"github.com/wikihop/wikihop/internal/store"
)

type pathsRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type pageInfo struct {
	Title string `json:"title"`
}

type pathsResponse struct {
	SourcePageTitle    string             `json:"sourcePageTitle"`
	TargetPageTitle    string             `json:"targetPageTitle"`
	IsSourceRedirected bool               `json:"isSourceRedirected"`
	IsTargetRedirected bool               `json:"isTargetRedirected"`
	Paths              [][]int64          `json:"paths"`
	Pages              map[int64]pageInfo `json:"pages"`
}

// handlePaths resolves both titles, runs the search, enriches the
// result with page titles, and records the search in the analytics log.
// Analytics failures are logged and swallowed; the computed result is
// never overturned by them.
func (s *Server) handlePaths(c *gin.Context) {
	start := time.Now()

	var req pathsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must name a source and target page."})
		return
	}
	if req.Source == "" || req.Target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must name a source and target page."})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(),
		time.Duration(s.cfg.Server.RequestTimeoutSeconds)*time.Second)
	defer cancel()

	source, sourceRedirected, err := s.store.ResolvePage(ctx, req.Source)
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			searchesTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Start page %q does not exist. Please try another search.", req.Source),
			})
			return
		}
		s.internalError(c, "resolve source page", err)
		return
	}

	target, targetRedirected, err := s.store.ResolvePage(ctx, req.Target)
	if err != nil {
		if errors.Is(err, store.ErrPageNotFound) {
			searchesTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("End page %q does not exist. Please try another search.", req.Target),
			})
			return
		}
		s.internalError(c, "resolve target page", err)
		return
	}

	paths, err := search.ShortestPaths(ctx, s.store, source.ID, target.ID)
	if err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		s.internalError(c, "search", err)
		return
	}

	duration := time.Since(start)
	searchDuration.Observe(duration.Seconds())
	if len(paths) == 0 {
		searchesTotal.WithLabelValues("none").Inc()
		s.log.Info("no paths found", "source", source.ID, "target", target.ID)
	} else {
		searchesTotal.WithLabelValues("found").Inc()
	}

	// The cap applies to the response only; analytics logs the full
	// search outcome.
	allPaths := paths
	if max := s.cfg.Search.MaxPaths; max > 0 && len(paths) > max {
		paths = paths[:max]
	}

	pages := make(map[int64]pageInfo)
	if len(paths) > 0 {
		idSet := make(map[int64]struct{})
		var ids []int64
		for _, path := range paths {
			for _, id := range path {
				if _, ok := idSet[id]; !ok {
					idSet[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}

		titles, err := s.store.PageTitles(ctx, ids)
		if err != nil {
			s.internalError(c, "fetch page titles", err)
			return
		}
		for id, title := range titles {
			pages[id] = pageInfo{Title: title}
		}
	}

	if s.cfg.Server.AnalyticsEnabled() {
		rec := store.SearchRecord{
			SourceID: source.ID,
			TargetID: target.ID,
			Duration: duration,
			Paths:    allPaths,
		}
		if err := s.store.RecordSearch(c.Request.Context(), rec); err != nil {
			s.log.Error("failed to record search", "error", err)
		}
	}

	c.JSON(http.StatusOK, pathsResponse{
		SourcePageTitle:    source.Title,
		TargetPageTitle:    target.Title,
		IsSourceRedirected: sourceRedirected,
		IsTargetRedirected: targetRedirected,
		Paths:              paths,
		Pages:              pages,
	})
}

// internalError logs the real cause server-side and replies with a
// generic message; internal details never reach the client.
func (s *Server) internalError(c *gin.Context, during string, err error) {
	s.log.Error("internal server error", "during", during, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "An unexpected internal server error occurred. Please try again.",
	})
}
