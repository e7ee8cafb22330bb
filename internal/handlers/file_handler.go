package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadFile godoc
// @Summary Upload an attachment
// @Description Upload a file to use as a campaign attachment, subject to the per-user storage quota
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} models.FileResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 413 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/files [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded", "details": err.Error()})
		return
	}

	file, err := h.fileService.UploadFile(userID, fileHeader)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Storage quota exceeded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.fileService.FileToResponse(file))
}

// GetFiles godoc
// @Summary List uploaded files
// @Tags files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/files [get]
func (h *FileHandler) GetFiles(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	files, err := h.fileService.GetUserFiles(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list files", "details": err.Error()})
		return
	}

	responses := make([]models.FileResponse, len(files))
	for i, file := range files {
		responses[i] = h.fileService.FileToResponse(file)
	}
	c.JSON(http.StatusOK, gin.H{"files": responses, "total": len(responses)})
}

// GetStorageUsage godoc
// @Summary Get storage usage
// @Description Get the authenticated user's storage consumption against quota
// @Tags files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.StorageUsageResponse
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/files/usage [get]
func (h *FileHandler) GetStorageUsage(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	usage, err := h.fileService.GetStorageUsage(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get storage usage", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, usage)
}

// DownloadFile godoc
// @Summary Download a file
// @Description Download a file by ID. Accepts either the bearer token of the owner or a signed ?token= query parameter.
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "File ID"
// @Param token query string false "Signed download token"
// @Success 200 "File content"
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/files/{id}/download [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	fileID := c.Param("id")

	var file *models.File
	var reader io.ReadCloser

	if token := c.Query("token"); token != "" {
		tokenFileID, err := h.fileService.ValidateDownloadToken(token)
		if err != nil || tokenFileID != fileID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired download token"})
			return
		}
		f, osFile, err := h.fileService.DownloadFileByToken(fileID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		file, reader = f, osFile
	} else {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		f, osFile, err := h.fileService.DownloadFile(fileID, userID.(string))
		if err != nil {
			if strings.Contains(err.Error(), "access denied") {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		file, reader = f, osFile
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Length", fmt.Sprintf("%d", file.FileSize))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		logrus.Errorf("Failed to stream file %s: %v", fileID, err)
	}
}

// GetSignedURL godoc
// @Summary Get a signed download URL
// @Description Generate a download URL valid for one hour without authentication
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/files/{id}/signed-url [get]
func (h *FileHandler) GetSignedURL(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	fileID := c.Param("id")

	// Ownership check before signing
	if _, err := h.fileService.GetFile(fileID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	url, err := h.fileService.GenerateSignedDownloadURL(fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate signed URL", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// DeleteFile godoc
// @Summary Delete a file
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	fileID := c.Param("id")

	if err := h.fileService.DeleteFile(fileID, userID); err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "access denied") {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
