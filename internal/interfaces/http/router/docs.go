package router

import (
	_ "github.com/QodexGroup/gym-management-system-sub002/docs" // registers the OpenAPI document
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// DocsPath is where the swagger UI and doc.json are served
const DocsPath = "/swagger/*any"

// RegisterDocs serves the API documentation outside the versioned prefix.
// access decides whether the caller may see it.
func RegisterDocs(engine *gin.Engine, access gin.HandlerFunc) {
	engine.GET(DocsPath, access, ginSwagger.WrapHandler(swaggerFiles.Handler))
}
