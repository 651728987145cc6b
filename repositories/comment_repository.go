package repositories

import (
	"context"
	"fmt"
	"strings"

	"blog-api/models"

	"gorm.io/gorm"
)

var commentSortColumns = map[string]string{
	"createdAt":   "created_at",
	"created_at":  "created_at",
	"likesCount":  "likes_count",
	"likes_count": "likes_count",
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	GetList(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int64, error)
	GetReplies(ctx context.Context, parentIDs []string) ([]*models.Comment, error)
	GetChildIDs(ctx context.Context, parentIDs []string) ([]string, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteByIDs(ctx context.Context, ids []string) error
	IncrementLikes(ctx context.Context, id string, delta int) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	// Mentioned users already exist, only the join rows are written.
	return r.db.WithContext(ctx).Omit("Author", "Replies", "Mentions.*").Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author", preloadAuthor(false)).
		Preload("Mentions", preloadAuthor(false)).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.Author", preloadAuthor(false)).
		Where("id = ?", id).
		First(&comment).Error
	return &comment, err
}

func (r *commentRepository) GetList(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Comment{}).Where("status = ?", filter.Status)

	if filter.PostID != "" {
		query = query.Where("post_id = ?", filter.PostID)
	}

	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	if filter.ParentCommentID == nil {
		query = query.Where("parent_comment_id IS NULL")
	} else {
		query = query.Where("parent_comment_id = ?", *filter.ParentCommentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := commentSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	err := query.
		Preload("Author", preloadAuthor(false)).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.CommentStatusApproved).Order("created_at ASC")
		}).
		Preload("Replies.Author", preloadAuthor(false)).
		Order(fmt.Sprintf("%s %s", column, sortOrder)).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&comments).Error

	return comments, total, err
}

func (r *commentRepository) GetReplies(ctx context.Context, parentIDs []string) ([]*models.Comment, error) {
	var replies []*models.Comment
	if len(parentIDs) == 0 {
		return replies, nil
	}

	err := r.db.WithContext(ctx).
		Preload("Author", preloadAuthor(false)).
		Where("parent_comment_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

func (r *commentRepository) GetChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	var ids []string
	if len(parentIDs) == 0 {
		return ids, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_comment_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comment_mentions WHERE comment_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
}

func (r *commentRepository) IncrementLikes(ctx context.Context, id string, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
