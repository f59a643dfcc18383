// Package api exposes the sketch bridge over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/sketch"
	"github.com/mjvo/sketchbridge/internal/transpile"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	sketches   *sketch.Manager
	transpiler *transpile.Transpiler
	log        *logging.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(sketches *sketch.Manager, transpiler *transpile.Transpiler, log *logging.Logger) *Handlers {
	return &Handlers{sketches: sketches, transpiler: transpiler, log: log}
}

// maxSourceSize caps submitted sketch source. Sketches are hand-written
// code; anything near this limit is not a sketch.
const maxSourceSize = 512 * 1024

type sourceRequest struct {
	Source string `json:"source" binding:"required"`
}

func (h *Handlers) bindSource(c *gin.Context) (string, bool) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	if len(req.Source) > maxSourceSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "source exceeds size limit"})
		return "", false
	}
	return req.Source, true
}

// Root reports service identity.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "sketchbridge",
	})
}

// Health reports service health and surface counts.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"surfaces": len(h.sketches.List()),
	})
}

// Transpile converts global-mode source to instance-mode source without
// mounting anything.
func (h *Handlers) Transpile(c *gin.Context) {
	source, ok := h.bindSource(c)
	if !ok {
		return
	}

	out, err := h.transpiler.Transpile(source)
	if err != nil {
		writeTranspileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": out})
}

// Mount creates a sketch surface for the submitted source.
func (h *Handlers) Mount(c *gin.Context) {
	source, ok := h.bindSource(c)
	if !ok {
		return
	}

	surface := h.sketches.Mount(source)
	c.JSON(http.StatusCreated, gin.H{"sketch": surface.Info()})
}

// List snapshots all mounted surfaces.
func (h *Handlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sketches": h.sketches.List()})
}

// Get snapshots one surface.
func (h *Handlers) Get(c *gin.Context) {
	surface, ok := h.sketches.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown sketch id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sketch": surface.Info()})
}

// Run executes a surface headlessly and returns the outcome, with runtime
// error text already mapped to source coordinates.
func (h *Handlers) Run(c *gin.Context) {
	result, err := h.sketches.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sketch.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown sketch id"})
			return
		}
		writeTranspileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": result})
}

// Unmount discards a surface.
func (h *Handlers) Unmount(c *gin.Context) {
	if !h.sketches.Unmount(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown sketch id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unmounted": true})
}

// writeTranspileError surfaces syntax errors verbatim with their position;
// anything else is an internal fault.
func writeTranspileError(c *gin.Context, err error) {
	var serr *transpile.SyntaxError
	if errors.As(err, &serr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  serr.Error(),
			"line":   serr.Line,
			"column": serr.Column,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
