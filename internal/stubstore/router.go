// Package stubstore serves the small part of the PostgREST API the importer
// talks to, backed by memory. It is meant for rehearsing an import, including
// its failure paths, before pointing the tool at a real project.
package stubstore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pocket-migrate/internal/logger"
)

var requiredColumns = []string{"id", "user_id", "raw_url"}

// Options control authentication and injected failures.
type Options struct {
	APIKey string // When set, requests must carry it in the apikey header
	// RejectBatchOver makes requests with more rows than this fail with 500.
	// Zero disables it.
	RejectBatchOver int
	// RejectURLContaining makes any request with a matching raw_url fail with 400.
	RejectURLContaining string
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Controller struct {
	store *Memory
	opts  Options
	log   logger.Logger
}

func NewController(store *Memory, opts Options, log logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	return &Controller{store: store, opts: opts, log: log}
}

// NewRouter creates the engine with the REST routes mounted.
func NewRouter(c *Controller) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(c.requestLogger())

	router.GET("/health", c.Health)

	rest := router.Group("/rest/v1")
	rest.Use(c.requireAPIKey())
	rest.GET("/:table", c.Count)
	rest.POST("/:table", c.Insert)

	return router
}

func (c *Controller) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		c.log.Info("stub request",
			logger.String("method", ctx.Request.Method),
			logger.String("path", ctx.Request.URL.Path),
			logger.Int("status", ctx.Writer.Status()),
		)
	}
}

func (c *Controller) requireAPIKey() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c.opts.APIKey == "" || ctx.GetHeader("apikey") == c.opts.APIKey {
			ctx.Next()
			return
		}
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "Invalid API key"})
	}
}

func (c *Controller) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Count answers the importer's connection probe.
func (c *Controller) Count(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, []gin.H{{"count": c.store.Count(ctx.Param("table"))}})
}

func (c *Controller) Insert(ctx *gin.Context) {
	table := ctx.Param("table")

	var rows []Row
	if err := json.NewDecoder(ctx.Request.Body).Decode(&rows); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Message: "malformed JSON body: " + err.Error(), Code: "PGRST102"})
		return
	}

	if c.opts.RejectBatchOver > 0 && len(rows) > c.opts.RejectBatchOver {
		ctx.JSON(http.StatusInternalServerError, errorResponse{Message: "batch too large"})
		return
	}

	for _, row := range rows {
		for _, col := range requiredColumns {
			if v, ok := row[col]; !ok || v == nil || v == "" {
				ctx.JSON(http.StatusBadRequest, errorResponse{
					Message: `null value in column "` + col + `" violates not-null constraint`,
					Code:    "23502",
				})
				return
			}
		}
		if c.opts.RejectURLContaining != "" {
			if url, _ := row["raw_url"].(string); strings.Contains(url, c.opts.RejectURLContaining) {
				ctx.JSON(http.StatusBadRequest, errorResponse{Message: "rejected url: " + url, Code: "23514"})
				return
			}
		}
	}

	if err := c.store.Insert(table, rows); err != nil {
		var dup *ErrDuplicateID
		if errors.As(err, &dup) {
			ctx.JSON(http.StatusConflict, errorResponse{Message: err.Error(), Code: "23505"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
		return
	}

	if strings.Contains(ctx.GetHeader("Prefer"), "return=representation") {
		ctx.JSON(http.StatusCreated, rows)
		return
	}
	ctx.Status(http.StatusCreated)
}
