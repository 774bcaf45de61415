package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"hack-portal.backend/internal/interfaces/http/handlers"
	"hack-portal.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler        *handlers.AuthHandler
	profileHandler     *handlers.ProfileHandler
	applicationHandler *handlers.ApplicationHandler
	adminHandler       *handlers.AdminHandler
	gatewayMiddleware  gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	// Every route goes through the gateway once; handlers never re-check
	// roles or verification themselves.
	v1.Use(d.gatewayMiddleware)
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.GET("/oauth/:provider", d.authHandler.OAuthURL)
			auth.GET("/callback", d.authHandler.Callback)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", d.authHandler.GetMe)
		}

		// Profile routes (profile gate: verified only, completion not
		// required here so new users can fill the form)
		profile := v1.Group("/profile")
		{
			profile.GET("", d.profileHandler.GetProfile)
			profile.PUT("", d.profileHandler.CompleteProfile)
		}

		// Application routes (protected: verified + complete profile)
		applications := v1.Group("/dashboard/applications")
		{
			applications.POST("", middleware.IdempotencyMiddleware(), d.applicationHandler.Submit)
			applications.PUT("/draft", d.applicationHandler.SaveDraft)
			applications.GET("/me", d.applicationHandler.GetOwn)
			applications.POST("/resume", d.applicationHandler.UploadResume)
			applications.GET("/resume", d.applicationHandler.ResumeURL)
		}

		// Admin review console routes (admin role only)
		admin := v1.Group("/admin")
		{
			admin.GET("/applications", d.adminHandler.ListApplications)
			admin.GET("/applications/stats", d.adminHandler.GetStats)
			admin.GET("/applications/:id", d.adminHandler.GetApplication)
			admin.GET("/applications/:id/resume", d.adminHandler.ResumeURL)
			admin.PUT("/applications/:id/status", d.adminHandler.UpdateStatus)
			admin.POST("/applications/bulk-status", d.adminHandler.BulkUpdateStatus)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "hack-portal-backend",
			"version": "0.1.0",
		})
	})
}
