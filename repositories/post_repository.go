package repositories

import (
	"context"
	"fmt"
	"strings"

	"blog-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const searchDocument = `to_tsvector('simple', coalesce(posts.title, '') || ' ' || coalesce(posts.content, ''))`

var postSortColumns = map[string]string{
	"created_at":     "created_at",
	"createdAt":      "created_at",
	"updated_at":     "updated_at",
	"updatedAt":      "updated_at",
	"published_at":   "published_at",
	"publishedAt":    "published_at",
	"title":          "title",
	"likes_count":    "likes_count",
	"likesCount":     "likes_count",
	"comments_count": "comments_count",
	"commentsCount":  "comments_count",
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetList(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error)
	GetRelated(ctx context.Context, post *models.Post, limit int) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post, replaceTags bool) error
	Delete(ctx context.Context, id string) error
	IncrementColumn(ctx context.Context, id, column string, delta int) error
	CountPublishedByTag(ctx context.Context) (map[string]int, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func preloadAuthor(withBio bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if withBio {
			return db.Select("id", "username", "first_name", "last_name", "avatar", "bio")
		}
		return db.Select("id", "username", "first_name", "last_name", "avatar")
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author", preloadAuthor(true)).
		Preload("Tags").
		Where("id = ?", id).
		First(&post).Error
	return &post, err
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author", preloadAuthor(true)).
		Preload("Tags").
		Where("slug = ?", slug).
		First(&post).Error
	return &post, err
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *postRepository) GetList(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Post{})

	// Drafts are only visible to their author
	if filter.ViewerID == "" {
		query = query.Where("posts.status = ?", models.PostStatusPublished)
	} else {
		query = query.Where("(posts.status = ? OR posts.author_id = ?)", models.PostStatusPublished, filter.ViewerID)
	}

	if filter.Status != "" {
		query = query.Where("posts.status = ?", filter.Status)
	}

	if filter.AuthorID != "" {
		query = query.Where("posts.author_id = ?", filter.AuthorID)
	}

	if len(filter.Tags) > 0 {
		tagged := r.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name IN ?", filter.Tags)
		query = query.Where("posts.id IN (?)", tagged)
	}

	if filter.Search != "" {
		query = query.Where(searchDocument+" @@ plainto_tsquery('simple', ?)", filter.Search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = orderPosts(query, filter)

	offset := (filter.Page - 1) * filter.Limit
	err := query.
		Preload("Author", preloadAuthor(false)).
		Preload("Tags").
		Offset(offset).
		Limit(filter.Limit).
		Find(&posts).Error

	return posts, total, err
}

func orderPosts(query *gorm.DB, filter models.PostFilter) *gorm.DB {
	if filter.SortBy == "relevance" && filter.Search != "" {
		return query.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ts_rank(" + searchDocument + ", plainto_tsquery('simple', ?)) DESC, posts.created_at DESC",
			Vars:               []interface{}{filter.Search},
			WithoutParentheses: true,
		}})
	}

	column, ok := postSortColumns[filter.SortBy]
	if !ok {
		column = "published_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	return query.
		Order(fmt.Sprintf("posts.%s %s NULLS LAST", column, sortOrder)).
		Order("posts.created_at DESC")
}

func (r *postRepository) GetRelated(ctx context.Context, post *models.Post, limit int) ([]models.Post, error) {
	var posts []models.Post

	tagIDs := make([]string, 0, len(post.Tags))
	for _, t := range post.Tags {
		tagIDs = append(tagIDs, t.ID)
	}
	if len(tagIDs) == 0 {
		return posts, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id IN ?", tagIDs).
		Where("posts.id <> ?", post.ID).
		Where("posts.status = ?", models.PostStatusPublished).
		Group("posts.id").
		Order("COUNT(post_tags.tag_id) DESC").
		Order("posts.published_at DESC NULLS LAST").
		Limit(limit).
		Preload("Author", preloadAuthor(false)).
		Preload("Tags").
		Find(&posts).Error

	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, replaceTags bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updatePost(tx, post).Error; err != nil {
			return err
		}
		if replaceTags {
			if err := tx.Model(post).Association("Tags").Replace(post.Tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// Counters are left to IncrementColumn.
var postEditableColumns = []string{
	"title", "slug", "content", "excerpt", "status", "featured_image", "published_at", "updated_at",
}

func updatePost(db *gorm.DB, post *models.Post) *gorm.DB {
	return db.Model(post).Select(postEditableColumns).Updates(post)
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Select("Tags").Delete(&models.Post{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) IncrementColumn(ctx context.Context, id, column string, delta int) error {
	if column != "likes_count" && column != "comments_count" {
		return fmt.Errorf("post counter %q is not supported", column)
	}

	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) CountPublishedByTag(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		TagID string
		Count int
	}

	err := r.db.WithContext(ctx).
		Table("post_tags").
		Select("post_tags.tag_id AS tag_id, COUNT(*) AS count").
		Joins("JOIN posts ON posts.id = post_tags.post_id").
		Where("posts.status = ?", models.PostStatusPublished).
		Group("post_tags.tag_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.TagID] = row.Count
	}
	return counts, nil
}
