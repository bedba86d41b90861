package postgres

import (
	"context"

	"classroom-live/internal/models"

	"gorm.io/gorm"
)

type GradeRepository struct {
	db *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{db}
}

func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *GradeRepository) FindByStudentID(ctx context.Context, studentID uint) ([]*models.Grade, error) {
	var grades []*models.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&grades).Error
	return grades, err
}
