package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"adminpanel/models"
	"adminpanel/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (a *app) setupRoutes(r *gin.Engine) {
	loadTemplates(r)

	r.POST("/login", a.loginHandler)
	r.POST("/refresh", a.refreshHandler)
	r.POST("/revoke_refresh", a.revokeRefreshHandler)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", a.metrics.handler())

	r.GET("/about", aboutHandler)
	r.GET("/vault", a.vaultPageHandler)
	r.GET("/vault/events", a.eventsHandler(filesChannel))
	r.GET("/vault/files/:id/thumb", a.thumbHandler)
	r.GET("/vault/objects/*key", a.objectHandler)

	api := r.Group("/api")
	api.Use(a.jwtAuthMiddleware())
	api.GET("/me", meHandler)
	api.GET("/items", a.listItemsHandler)
	api.POST("/items", a.createItemHandler)
	api.PUT("/items/:id", a.updateItemHandler)
	api.DELETE("/items/:id", a.deleteItemHandler)
	api.GET("/events", a.channelEventsHandler)
	api.GET("/files", a.listFilesHandler)
	api.POST("/files", a.uploadFileHandler)
}

// requestLogger logs one line per request and tags it with a request id.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
		log.Info(c.Request.Context(), "request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket requests, so a token query parameter is accepted as well.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return c.Query("token")
}

func (a *app) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		claims, err := a.tokens.parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "role": c.GetString("role")})
}

func (a *app) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	user, err := authenticate(ctx, a.accounts, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	a.issueTokens(c, user, "login successful")
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token.
func (a *app) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	rt, err := a.accounts.RefreshTokenByHash(ctx, hashToken(req.RefreshToken))
	if err != nil || !rt.Usable(a.tokens.now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	user, err := a.accounts.UserByID(ctx, rt.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if err := a.accounts.RevokeRefreshToken(ctx, rt.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	a.issueTokens(c, user, "")
}

func (a *app) issueTokens(c *gin.Context, user models.User, message string) {
	access, err := a.tokens.accessToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refresh, err := a.tokens.refreshToken(c.Request.Context(), a.accounts, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	resp := gin.H{"token": access, "refresh_token": refresh}
	if message != "" {
		resp["message"] = message
	}
	c.JSON(http.StatusOK, resp)
}

// revokeRefreshHandler revokes a refresh token on logout.
func (a *app) revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	rt, err := a.accounts.RefreshTokenByHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, errTokenNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if err := a.accounts.RevokeRefreshToken(ctx, rt.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

func parseFileID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
