package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/morgan8889/design-flow/internal/attention"
	"github.com/morgan8889/design-flow/internal/models"
	"github.com/morgan8889/design-flow/internal/project"
	"github.com/morgan8889/design-flow/internal/settings"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, syncer Syncer) {
	api := router.Group("/api")

	api.GET("/projects", handleProjectList(db))
	api.POST("/projects", handleProjectCreate(db))
	api.GET("/projects/:id", handleProjectGet(db))
	api.PATCH("/projects/:id", handleProjectUpdate(db))
	api.DELETE("/projects/:id", handleProjectDelete(db))
	api.GET("/projects/:id/plans", handleProjectPlans(db))
	api.GET("/projects/:id/pull-requests", handleProjectPRs(db))

	api.GET("/pull-requests", handlePRList(db))

	api.GET("/attention", handleAttentionList(db))
	api.POST("/attention/:id/resolve", handleAttentionResolve(db))
	api.GET("/activity", handleActivity(db))

	api.GET("/settings", handleSettingsList(db))
	api.PUT("/settings/:key", handleSettingSet(db))

	api.POST("/sync", handleSync(syncer))
	api.GET("/github/repos", handleDiscover(syncer))
}

// fail maps domain errors onto HTTP status codes.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func handleProjectList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		trackedOnly := c.Query("tracked") == "true"
		projects, err := project.List(db, trackedOnly)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

type projectCreateRequest struct {
	Name      string `json:"name"`
	GitHubURL string `json:"githubUrl"`
	LocalPath string `json:"localPath"`
	Source    string `json:"source"`
	IsTracked bool   `json:"isTracked"`
}

func handleProjectCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.Source == "" {
			req.Source = models.SourceManual
		}

		p, err := project.Create(db, project.CreateOpts{
			Name:      req.Name,
			GitHubURL: req.GitHubURL,
			LocalPath: req.LocalPath,
			Source:    req.Source,
			Tracked:   req.IsTracked,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func handleProjectGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type projectUpdateRequest struct {
	IsTracked *bool   `json:"isTracked"`
	GitHubURL *string `json:"githubUrl"`
	LocalPath *string `json:"localPath"`
}

func handleProjectUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		p, err := project.Update(db, c.Param("id"), project.UpdateOpts{
			IsTracked: req.IsTracked,
			GitHubURL: req.GitHubURL,
			LocalPath: req.LocalPath,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func handleProjectDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := project.Delete(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// planResponse mirrors the Plan row with the stored phase tree inlined as
// structured JSON rather than text.
type planResponse struct {
	models.Plan
	Phases json.RawMessage `json:"phases"`
}

func handleProjectPlans(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := project.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}

		var plans []models.Plan
		if err := db.Where("project_id = ?", c.Param("id")).
			Order("file_path").Find(&plans).Error; err != nil {
			fail(c, err)
			return
		}

		out := make([]planResponse, len(plans))
		for i, p := range plans {
			out[i] = planResponse{Plan: p, Phases: json.RawMessage(p.Phases)}
		}
		c.JSON(http.StatusOK, out)
	}
}

func handleProjectPRs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := project.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}

		var prs []models.PullRequest
		if err := db.Where("project_id = ?", c.Param("id")).
			Order("number DESC").Find(&prs).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, prs)
	}
}

func handlePRList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("number DESC")
		if project := c.Query("project"); project != "" {
			query = query.Where("project_id = ?", project)
		}

		var prs []models.PullRequest
		if err := query.Find(&prs).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, prs)
	}
}

func handleAttentionList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var items []models.AttentionItem
		var err error
		if c.Query("resolved") == "true" {
			limit, _ := strconv.Atoi(c.Query("limit"))
			items, err = attention.Resolved(db, limit)
		} else {
			items, err = attention.Active(db, c.Query("project"))
		}
		if err != nil {
			fail(c, err)
			return
		}

		if itemType := c.Query("type"); itemType != "" {
			filtered := items[:0]
			for _, item := range items {
				if item.Type == itemType {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		}
		c.JSON(http.StatusOK, items)
	}
}

func handleAttentionResolve(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := attention.Get(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		if err := attention.Resolve(db, item.ID); err != nil {
			fail(c, err)
			return
		}

		item, err = attention.Get(db, item.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func handleActivity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		items, err := attention.Resolved(db, limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func handleSettingsList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := settings.All(db)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
	}
}

type settingSetRequest struct {
	Value string `json:"value"`
}

func handleSettingSet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req settingSetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if err := settings.Set(db, c.Param("key"), req.Value); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": req.Value})
	}
}

func handleSync(syncer Syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if syncer == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub token not configured"})
			return
		}

		if id := c.Query("project"); id != "" {
			if err := syncer.SyncProject(c.Request.Context(), id); err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok", "project": id})
			return
		}

		if err := syncer.SyncAll(c.Request.Context()); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleDiscover(syncer Syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if syncer == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub token not configured"})
			return
		}

		created, err := syncer.DiscoverRepos(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		if created == nil {
			created = []models.Project{}
		}
		c.JSON(http.StatusOK, created)
	}
}
