package router

import (
	"github.com/gin-gonic/gin"

	"vertexadapters/internal/handler"
	"vertexadapters/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(predictH *handler.PredictHandler, healthH *handler.HealthHandler) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.GET("/providers", predictH.Providers)
	v1.POST("/models/:provider/predict", predictH.Predict)

	return r
}
