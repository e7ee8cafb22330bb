package repository

import (
	"github.com/raakesh-m/autosendr-backend/internal/models"

	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create creates a new file record
func (r *FileRepository) Create(file *models.File) error {
	return r.db.Create(file).Error
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(id string) (*models.File, error) {
	var file models.File
	err := r.db.First(&file, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// GetByUserID retrieves all files for a user
func (r *FileRepository) GetByUserID(userID string) ([]*models.File, error) {
	var files []*models.File
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&files).Error
	return files, err
}

// GetByIDs retrieves multiple files by ID scoped to their owner
func (r *FileRepository) GetByIDs(ids []string, userID string) ([]*models.File, error) {
	var files []*models.File
	err := r.db.Where("id IN ? AND user_id = ?", ids, userID).Find(&files).Error
	return files, err
}

// SumSizeByUser returns total stored bytes and file count for quota checks
func (r *FileRepository) SumSizeByUser(userID string) (int64, int64, error) {
	var result struct {
		Total int64
		Count int64
	}
	err := r.db.Model(&models.File{}).
		Select("COALESCE(SUM(file_size), 0) AS total, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Scan(&result).Error
	return result.Total, result.Count, err
}

// Delete deletes a file record
func (r *FileRepository) Delete(id string) error {
	return r.db.Delete(&models.File{}, "id = ?", id).Error
}
