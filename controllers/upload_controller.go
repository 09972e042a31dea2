package controllers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/regport/api-go/config"
	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
)

// UploadController hands out references into the blob store holding report
// artifacts. The engine never reads the bytes; validation of the spreadsheet
// content is the external validator's job.
type UploadController struct {
	Client        *s3.Client
	StorageConfig *config.StorageConfig
}

func NewUploadController() *UploadController {
	cfg := config.GetStorageConfig()

	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region: cfg.Region,
	})

	return &UploadController{
		Client:        client,
		StorageConfig: cfg,
	}
}

type PresignUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
}

type PresignUploadResponse struct {
	UploadURL string         `json:"uploadUrl"`
	File      models.FileRef `json:"file"`
	ExpiresIn int            `json:"expiresIn"`
}

// report artifacts are spreadsheets or archives of them
var allowedArtifactTypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
	"text/csv",
	"application/zip",
}

const maxArtifactSize = 100 * 1024 * 1024 // 100MB

// PresignUpload issues a presigned PUT and the FileRef to attach to the
// report once the upload completes.
func (uc *UploadController) PresignUpload(c *gin.Context) {
	caller := utils.GetCaller(c)
	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !uc.isValidArtifactType(req.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported artifact content type"})
		return
	}
	if req.FileSize <= 0 || req.FileSize > maxArtifactSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds limit"})
		return
	}

	key := uc.generateArtifactKey(caller.UserID, req.FileName)

	uploadURL, err := uc.createPresignedURL(key, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}

	c.JSON(http.StatusOK, PresignUploadResponse{
		UploadURL: uploadURL,
		File: models.FileRef{
			Key:      key,
			Name:     req.FileName,
			Size:     req.FileSize,
			MimeType: req.ContentType,
			URL:      fmt.Sprintf("%s/%s", uc.StorageConfig.PublicURL, key),
		},
		ExpiresIn: 3600,
	})
}

// ConfirmUpload verifies the artifact actually landed in the store before the
// client attaches its FileRef to a report.
func (uc *UploadController) ConfirmUpload(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File key is required"})
		return
	}

	info, err := uc.Client.HeadObject(context.TODO(), &s3.HeadObjectInput{
		Bucket: aws.String(uc.StorageConfig.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found in storage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":      key,
		"fileUrl":  fmt.Sprintf("%s/%s", uc.StorageConfig.PublicURL, key),
		"fileSize": info.ContentLength,
	})
}

func (uc *UploadController) isValidArtifactType(contentType string) bool {
	for _, t := range allowedArtifactTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

func (uc *UploadController) generateArtifactKey(userID uint, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("reports/%d/%d_%s%s", userID, time.Now().Unix(), uuid.New().String(), ext)
}

func (uc *UploadController) createPresignedURL(key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(uc.StorageConfig.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presigner := s3.NewPresignClient(uc.Client)
	req, err := presigner.PresignPutObject(context.TODO(), input, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
