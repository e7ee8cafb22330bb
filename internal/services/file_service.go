package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// defaultQuotaBytes is the per-user storage quota applied when
// STORAGE_QUOTA_BYTES is not set (100 MB)
const defaultQuotaBytes = 100 * 1024 * 1024

// ErrQuotaExceeded is returned when an upload would push the user past their
// storage quota
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// FileService stores campaign attachments on local disk and enforces the
// per-user storage quota
type FileService struct {
	fileRepo   *repository.FileRepository
	baseURL    string
	storageDir string
	quotaBytes int64
	jwtSecret  []byte
}

// FileDownloadClaims represents JWT claims for a signed download token
type FileDownloadClaims struct {
	FileID string `json:"file_id"`
	jwt.RegisteredClaims
}

func NewFileService(fileRepo *repository.FileRepository, baseURL string) *FileService {
	storageDir := os.Getenv("FILE_STORAGE_DIR")
	if storageDir == "" {
		storageDir = "./storage/files"
	}
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		logrus.Warnf("Failed to create storage directory %s: %v", storageDir, err)
	}

	quotaBytes := int64(defaultQuotaBytes)
	if raw := os.Getenv("STORAGE_QUOTA_BYTES"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			quotaBytes = parsed
		}
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		jwtSecret = []byte("default-secret-key-change-in-production")
		logrus.Warn("JWT_SECRET not set, using default secret for file download tokens")
	}

	return &FileService{
		fileRepo:   fileRepo,
		baseURL:    baseURL,
		storageDir: storageDir,
		quotaBytes: quotaBytes,
		jwtSecret:  jwtSecret,
	}
}

// UploadFile stores an uploaded attachment after checking the user's quota
func (s *FileService) UploadFile(userID string, fileHeader *multipart.FileHeader) (*models.File, error) {
	usedBytes, _, err := s.fileRepo.SumSizeByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage usage: %w", err)
	}
	if usedBytes+fileHeader.Size > s.quotaBytes {
		return nil, ErrQuotaExceeded
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fileID := uuid.New().String()
	ext := filepath.Ext(fileHeader.Filename)
	fileName := fileID + ext

	userDir := filepath.Join(s.storageDir, userID)
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create user directory: %w", err)
	}

	filePath := filepath.Join(userDir, fileName)
	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	fileSize, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(filePath) // Clean up on error
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fileModel := &models.File{
		UserID:       userID,
		FileName:     fileName,
		OriginalName: fileHeader.Filename,
		MimeType:     mimeType,
		FileSize:     fileSize,
		FilePath:     filePath,
	}

	if err := s.fileRepo.Create(fileModel); err != nil {
		os.Remove(filePath) // Clean up on error
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	logrus.Infof("File uploaded successfully: %s (ID: %s, Size: %d bytes)", fileHeader.Filename, fileModel.ID, fileSize)
	return fileModel, nil
}

// GetFile retrieves a file by ID, enforcing ownership
func (s *FileService) GetFile(fileID string, userID string) (*models.File, error) {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	if file.UserID != userID {
		return nil, errors.New("access denied: file does not belong to user")
	}
	return file, nil
}

// GetUserFiles retrieves all files for a user
func (s *FileService) GetUserFiles(userID string) ([]*models.File, error) {
	return s.fileRepo.GetByUserID(userID)
}

// GetStorageUsage reports the user's storage consumption against quota
func (s *FileService) GetStorageUsage(userID string) (*models.StorageUsageResponse, error) {
	usedBytes, count, err := s.fileRepo.SumSizeByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute storage usage: %w", err)
	}
	return &models.StorageUsageResponse{
		UsedBytes:  usedBytes,
		QuotaBytes: s.quotaBytes,
		FileCount:  int(count),
	}, nil
}

// DeleteFile removes a file record and its bytes on disk
func (s *FileService) DeleteFile(fileID string, userID string) error {
	file, err := s.GetFile(fileID, userID)
	if err != nil {
		return err
	}
	if err := s.fileRepo.Delete(file.ID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	if err := os.Remove(file.FilePath); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to remove file from storage: %v", err)
	}
	return nil
}

// DownloadFile returns the file content for download (requires ownership)
func (s *FileService) DownloadFile(fileID string, userID string) (*models.File, *os.File, error) {
	file, err := s.GetFile(fileID, userID)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(file.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, f, nil
}

// DownloadFileByToken returns the file content using a signed token (no user check)
func (s *FileService) DownloadFileByToken(fileID string) (*models.File, *os.File, error) {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("file not found: %w", err)
	}
	f, err := os.Open(file.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, f, nil
}

// GetDownloadURL generates the authenticated download URL for a file
func (s *FileService) GetDownloadURL(fileID string) string {
	return fmt.Sprintf("%s/api/v1/files/%s/download", strings.TrimSuffix(s.baseURL, "/"), fileID)
}

// GenerateSignedDownloadURL generates a signed download URL valid for one hour
func (s *FileService) GenerateSignedDownloadURL(fileID string) (string, error) {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}

	claims := &FileDownloadClaims{
		FileID: file.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "autosendr-backend",
			Subject:   file.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return fmt.Sprintf("%s/api/v1/files/%s/download?token=%s", strings.TrimSuffix(s.baseURL, "/"), fileID, tokenString), nil
}

// ValidateDownloadToken validates a download token and returns the file ID
func (s *FileService) ValidateDownloadToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &FileDownloadClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(*FileDownloadClaims); ok && token.Valid {
		return claims.FileID, nil
	}
	return "", errors.New("invalid token claims")
}

// FileToResponse converts a File model to its API response shape
func (s *FileService) FileToResponse(file *models.File) models.FileResponse {
	return models.FileResponse{
		ID:           file.ID,
		UserID:       file.UserID,
		FileName:     file.FileName,
		OriginalName: file.OriginalName,
		MimeType:     file.MimeType,
		FileSize:     file.FileSize,
		DownloadURL:  s.GetDownloadURL(file.ID),
		CreatedAt:    file.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    file.UpdatedAt.Format(time.RFC3339),
	}
}
