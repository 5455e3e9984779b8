package api

import (
	"github.com/DropShort/Short-File-Service/cmd/middleware"
	"github.com/DropShort/Short-File-Service/internal/api/handlers"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

// RegisterRoutes wires the two public endpoints. The upload route sits
// behind the shared-secret path segment; everything else is a short token
// lookup.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, secretKey string, maxContentMB int64) {
	r.Use(gintrace.Middleware("short-file-service"))

	r.POST("/:token/",
		middleware.MaxBodySize(maxContentMB),
		middleware.RequireUploadToken(secretKey),
		h.Upload,
	)

	r.GET("/:token", h.Download)
}
