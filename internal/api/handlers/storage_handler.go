package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bucketkit/bucketkit/internal/fetch"
	"github.com/bucketkit/bucketkit/internal/objectstore"
)

// StorageHandler maps named storage operations onto the objectstore service.
type StorageHandler struct {
	store *objectstore.Service
}

func NewStorageHandler(store *objectstore.Service) *StorageHandler {
	return &StorageHandler{store: store}
}

// statusForError translates service errors into HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, objectstore.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, objectstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, objectstore.ErrUnsupportedMethod):
		return http.StatusBadRequest
	case errors.Is(err, objectstore.ErrConnectionFailed), errors.Is(err, fetch.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

type connectRequest struct {
	Endpoint  string `json:"endpoint" binding:"required"`
	Port      int    `json:"port"`
	UseSSL    bool   `json:"useSSL"`
	AccessKey string `json:"accessKey" binding:"required"`
	SecretKey string `json:"secretKey" binding:"required"`
	Region    string `json:"region"`
}

func (h *StorageHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := objectstore.Config{
		Endpoint:  req.Endpoint,
		Port:      req.Port,
		UseSSL:    req.UseSSL,
		AccessKey: req.AccessKey,
		SecretKey: req.SecretKey,
		Region:    req.Region,
	}
	if err := h.store.Connect(c.Request.Context(), cfg); err != nil {
		log.Error().Err(err).Str("endpoint", req.Endpoint).Msg("connect failed")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "connected"})
}

func (h *StorageHandler) ListBuckets(c *gin.Context) {
	buckets, err := h.store.ListBuckets(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

type createBucketRequest struct {
	Name   string `json:"name" binding:"required"`
	Region string `json:"region"`
}

func (h *StorageHandler) CreateBucket(c *gin.Context) {
	var req createBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.CreateBucket(c.Request.Context(), req.Name, req.Region); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bucket": req.Name})
}

func (h *StorageHandler) DeleteBucket(c *gin.Context) {
	if err := h.store.DeleteBucket(c.Request.Context(), c.Param("bucket")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StorageHandler) BucketExists(c *gin.Context) {
	exists, err := h.store.BucketExists(c.Request.Context(), c.Param("bucket"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *StorageHandler) ListObjects(c *gin.Context) {
	recursive := c.Query("recursive") == "true"
	objects, err := h.store.ListObjects(c.Request.Context(), c.Param("bucket"), c.Query("prefix"), recursive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"objects": objects})
}

type uploadRequest struct {
	Bucket     string            `json:"bucket" binding:"required"`
	ObjectName string            `json:"objectName" binding:"required"`
	Source     string            `json:"source" binding:"required"`
	Metadata   map[string]string `json:"metadata"`
}

func (h *StorageHandler) UploadFile(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UploadFile(c.Request.Context(), req.Bucket, req.ObjectName, req.Source, req.Metadata); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bucket": req.Bucket, "object": req.ObjectName})
}

// UploadStream stores the raw request body as the object's content.
func (h *StorageHandler) UploadStream(c *gin.Context) {
	bucket := c.Query("bucket")
	objectName := c.Query("object")
	if bucket == "" || objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket and object query parameters are required"})
		return
	}
	err := h.store.UploadStream(c.Request.Context(), bucket, objectName, c.Request.Body, c.Request.ContentLength, nil)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bucket": bucket, "object": objectName})
}

type downloadRequest struct {
	Bucket      string `json:"bucket" binding:"required"`
	ObjectName  string `json:"objectName" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

func (h *StorageHandler) DownloadFile(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.DownloadFile(c.Request.Context(), req.Bucket, req.ObjectName, req.Destination); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"destination": req.Destination})
}

// GetObjectContent streams the object body to the client.
func (h *StorageHandler) GetObjectContent(c *gin.Context) {
	bucket := c.Query("bucket")
	objectName := c.Query("object")
	if bucket == "" || objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket and object query parameters are required"})
		return
	}
	rc, err := h.store.GetObjectStream(c.Request.Context(), bucket, objectName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Error().Err(err).Str("bucket", bucket).Str("object", objectName).Msg("failed streaming object")
	}
}

func (h *StorageHandler) GetObjectInfo(c *gin.Context) {
	bucket := c.Query("bucket")
	objectName := c.Query("object")
	if bucket == "" || objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket and object query parameters are required"})
		return
	}
	info, err := h.store.GetObjectInfo(c.Request.Context(), bucket, objectName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *StorageHandler) DeleteObject(c *gin.Context) {
	bucket := c.Query("bucket")
	objectName := c.Query("object")
	if bucket == "" || objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket and object query parameters are required"})
		return
	}
	if err := h.store.DeleteObject(c.Request.Context(), bucket, objectName); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type deleteObjectsRequest struct {
	Bucket  string   `json:"bucket" binding:"required"`
	Objects []string `json:"objects" binding:"required"`
}

func (h *StorageHandler) DeleteObjects(c *gin.Context) {
	var req deleteObjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.store.DeleteObjects(c.Request.Context(), req.Bucket, req.Objects)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type copyRequest struct {
	SourceBucket string `json:"sourceBucket" binding:"required"`
	SourceObject string `json:"sourceObject" binding:"required"`
	DestBucket   string `json:"destBucket" binding:"required"`
	DestObject   string `json:"destObject" binding:"required"`
}

func (h *StorageHandler) CopyObject(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.store.CopyObject(c.Request.Context(), req.SourceBucket, req.SourceObject, req.DestBucket, req.DestObject)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bucket": req.DestBucket, "object": req.DestObject})
}

type presignRequest struct {
	Bucket        string            `json:"bucket" binding:"required"`
	ObjectName    string            `json:"objectName" binding:"required"`
	Method        string            `json:"method" binding:"required"`
	ExpirySeconds int               `json:"expirySeconds"`
	Params        map[string]string `json:"params"`
}

func (h *StorageHandler) PresignedURL(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := url.Values{}
	for k, v := range req.Params {
		params.Set(k, v)
	}

	u, err := h.store.PresignedURL(c.Request.Context(), req.Bucket, req.ObjectName, req.Method,
		time.Duration(req.ExpirySeconds)*time.Second, params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

func (h *StorageHandler) GetStorageStats(c *gin.Context) {
	stats, err := h.store.GetStorageStats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type batchRequest struct {
	Bucket string                     `json:"bucket" binding:"required"`
	Items  []objectstore.TransferItem `json:"items" binding:"required"`
}

func (h *StorageHandler) UploadFiles(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.store.UploadFiles(c.Request.Context(), req.Bucket, req.Items)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StorageHandler) DownloadFiles(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.store.DownloadFiles(c.Request.Context(), req.Bucket, req.Items)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type policyRequest struct {
	Policy string `json:"policy" binding:"required"`
}

func (h *StorageHandler) SetBucketPolicy(c *gin.Context) {
	var req policyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetBucketPolicy(c.Request.Context(), c.Param("bucket"), req.Policy); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StorageHandler) GetBucketPolicy(c *gin.Context) {
	policy, err := h.store.GetBucketPolicy(c.Request.Context(), c.Param("bucket"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"policy": policy})
}

func (h *StorageHandler) DeleteBucketPolicy(c *gin.Context) {
	if err := h.store.DeleteBucketPolicy(c.Request.Context(), c.Param("bucket")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
