package api

import (
	"github.com/gin-gonic/gin"

	"webgen_ai_server/internal/logger"
	"webgen_ai_server/internal/types"
)

// RegisterRoutes sets up the API endpoints. Every endpoint is served both at
// the root and under /api so the same frontend works behind either layout.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(methodNotAllowed)
	router.NoRoute(notFound)

	for _, group := range []*gin.RouterGroup{&router.RouterGroup, router.Group("/api")} {
		// --- Generation ---
		group.POST("/generate-website", h.Generate(types.StageWebsite))
		group.POST("/generate-html", h.Generate(types.StageHTML))
		group.POST("/generate-styles", h.Generate(types.StageStyles))
		group.POST("/generate-scripts", h.Generate(types.StageScripts))
		group.POST("/generate-functionality", h.Generate(types.StageFunctionality))

		// --- Health ---
		group.GET("/health", h.Health)
	}

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}
}

// NewRouter builds the gin engine with the middleware chain and routes.
func NewRouter(h *APIHandler, cors CORSConfig, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cors))
	RegisterRoutes(router, h)
	return router
}
