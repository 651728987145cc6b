package repositories

import (
	"context"

	"blog-api/models"

	"gorm.io/gorm"
)

type LikeRepository interface {
	Find(ctx context.Context, userID, targetID string, targetType models.LikeTargetType) (*models.Like, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, id string) error
	GetByUser(ctx context.Context, userID string, targetType models.LikeTargetType) ([]models.Like, error)
	GetByTarget(ctx context.Context, targetID string, targetType models.LikeTargetType) ([]models.Like, error)
	Count(ctx context.Context, targetID string, targetType models.LikeTargetType) (int64, error)
	GetLikedTargetIDs(ctx context.Context, userID string, targetIDs []string, targetType models.LikeTargetType) ([]string, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Find(ctx context.Context, userID, targetID string, targetType models.LikeTargetType) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		First(&like).Error
	return &like, err
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Omit("User").Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Like{}).Error
}

func (r *likeRepository) GetByUser(ctx context.Context, userID string, targetType models.LikeTargetType) ([]models.Like, error) {
	var likes []models.Like
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}
	err := query.Order("created_at DESC").Find(&likes).Error
	return likes, err
}

func (r *likeRepository) GetByTarget(ctx context.Context, targetID string, targetType models.LikeTargetType) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Preload("User", preloadAuthor(false)).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}

func (r *likeRepository) Count(ctx context.Context, targetID string, targetType models.LikeTargetType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) GetLikedTargetIDs(ctx context.Context, userID string, targetIDs []string, targetType models.LikeTargetType) ([]string, error) {
	var ids []string
	if len(targetIDs) == 0 {
		return ids, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, targetType, targetIDs).
		Pluck("target_id", &ids).Error
	return ids, err
}
