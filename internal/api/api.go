// Package api is the HTTP tool-dispatch boundary: it maps named storage
// operations onto objectstore.Service methods.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bucketkit/bucketkit/internal/api/handlers"
	"github.com/bucketkit/bucketkit/internal/api/middleware"
	"github.com/bucketkit/bucketkit/internal/objectstore"
)

func NewRouter(store *objectstore.Service, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	storageHandler := handlers.NewStorageHandler(store)
	v1 := router.Group("/api/v1")
	{
		v1.POST("/connect", storageHandler.Connect)

		v1.GET("/buckets", storageHandler.ListBuckets)
		v1.POST("/buckets", storageHandler.CreateBucket)
		v1.DELETE("/buckets/:bucket", storageHandler.DeleteBucket)
		v1.GET("/buckets/:bucket/exists", storageHandler.BucketExists)
		v1.GET("/buckets/:bucket/objects", storageHandler.ListObjects)
		v1.GET("/buckets/:bucket/policy", storageHandler.GetBucketPolicy)
		v1.PUT("/buckets/:bucket/policy", storageHandler.SetBucketPolicy)
		v1.DELETE("/buckets/:bucket/policy", storageHandler.DeleteBucketPolicy)

		objects := v1.Group("/objects")
		{
			objects.POST("/upload", storageHandler.UploadFile)
			objects.PUT("/content", storageHandler.UploadStream)
			objects.POST("/download", storageHandler.DownloadFile)
			objects.GET("/content", storageHandler.GetObjectContent)
			objects.GET("/info", storageHandler.GetObjectInfo)
			objects.DELETE("", storageHandler.DeleteObject)
			objects.POST("/delete", storageHandler.DeleteObjects)
			objects.POST("/copy", storageHandler.CopyObject)
			objects.POST("/presign", storageHandler.PresignedURL)
		}

		batch := v1.Group("/batch")
		{
			batch.POST("/upload", storageHandler.UploadFiles)
			batch.POST("/download", storageHandler.DownloadFiles)
		}

		v1.GET("/stats", storageHandler.GetStorageStats)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	normalized := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil, true
		}
		normalized = append(normalized, origin)
	}
	return normalized, false
}
