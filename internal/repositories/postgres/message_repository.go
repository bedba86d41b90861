package postgres

import (
	"context"

	"classroom-live/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db}
}

// Create stores the message and fills in its id and timestamp.
func (r *MessageRepository) Create(ctx context.Context, msg *models.CourseMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) FindByCourseID(ctx context.Context, courseID uint, limit int) ([]*models.CourseMessage, error) {
	var messages []*models.CourseMessage
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (*models.CourseMessage, error) {
	var msg models.CourseMessage
	err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error
	return &msg, err
}
