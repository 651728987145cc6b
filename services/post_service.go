package services

import (
	"context"
	"errors"
	"log"
	"time"

	"blog-api/helper"
	"blog-api/models"
	"blog-api/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPostLimit    = 10
	defaultRelatedLimit = 5
	maxPageLimit        = 100
)

type PostService interface {
	Create(ctx context.Context, req models.CreatePostRequest, authorID string) (*models.Post, error)
	FindAll(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error)
	FindPublished(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error)
	FindByAuthor(ctx context.Context, authorID string, filter models.PostFilter) ([]models.Post, int64, error)
	FindOne(ctx context.Context, id, viewerID string) (*models.Post, error)
	FindBySlug(ctx context.Context, slug, viewerID string) (*models.Post, error)
	FindRelated(ctx context.Context, id, viewerID string, limit int) ([]models.Post, error)
	Update(ctx context.Context, id string, req models.UpdatePostRequest, userID string) (*models.Post, error)
	Remove(ctx context.Context, id, userID string) error
	IncrementLikes(ctx context.Context, id string) error
	DecrementLikes(ctx context.Context, id string) error
	IncrementComments(ctx context.Context, id string) error
	DecrementComments(ctx context.Context, id string) error
}

type postService struct {
	postRepo repositories.PostRepository
	tags     TagService
}

func NewPostService(postRepo repositories.PostRepository, tags TagService) PostService {
	return &postService{postRepo: postRepo, tags: tags}
}

// NormalizePage clamps paging input to page >= 1 and 1 <= limit <= 100.
func NormalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func (s *postService) Create(ctx context.Context, req models.CreatePostRequest, authorID string) (*models.Post, error) {
	slug, err := s.newSlug(ctx, req.Slug, req.Title)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ResolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:         req.Title,
		Slug:          slug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		AuthorID:      authorID,
		Tags:          tags,
		FeaturedImage: req.FeaturedImage,
	}

	status := models.PostStatus(req.Status)
	if status == "" {
		status = models.PostStatusDraft
	}
	post.SetStatus(status, time.Now())

	if post.Excerpt == "" {
		post.Excerpt = DeriveExcerpt(post.Content, excerptLength)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflict("Post with slug %s already exists", slug)
		}
		return nil, err
	}

	s.refreshTagUsage(ctx)

	return s.get(ctx, post.ID)
}

// newSlug normalizes a requested slug, or derives one from the title and
// makes it unique with a short random suffix.
func (s *postService) newSlug(ctx context.Context, requested, title string) (string, error) {
	if requested != "" {
		slug := models.Slugify(requested)
		if slug == "" {
			return "", models.NewBadRequest("Invalid slug")
		}
		exists, err := s.postRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if exists {
			return "", models.NewConflict("Post with slug %s already exists", slug)
		}
		return slug, nil
	}

	slug := models.Slugify(title)
	if slug == "" {
		slug = "post"
	}

	exists, err := s.postRepo.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if exists {
		slug = slug + "-" + uuid.NewString()[:8]
	}
	return slug, nil
}

func (s *postService) FindAll(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error) {
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit, defaultPostLimit)
	if filter.SortBy == "" {
		filter.SortBy = "published_at"
	}
	filter.Tags = NormalizeTags(filter.Tags)

	return s.postRepo.GetList(ctx, filter)
}

func (s *postService) FindPublished(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error) {
	filter.Status = models.PostStatusPublished
	return s.FindAll(ctx, filter)
}

func (s *postService) FindByAuthor(ctx context.Context, authorID string, filter models.PostFilter) ([]models.Post, int64, error) {
	if !helper.IsValidID(authorID) {
		return nil, 0, models.NewBadRequest("Invalid author ID")
	}
	filter.AuthorID = authorID
	return s.FindAll(ctx, filter)
}

func (s *postService) FindOne(ctx context.Context, id, viewerID string) (*models.Post, error) {
	post, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() && post.AuthorID != viewerID {
		return nil, models.NewNotFound("Post with ID %s not found", id)
	}

	post.ContentHTML = RenderContent(post.Content)
	return post, nil
}

func (s *postService) FindBySlug(ctx context.Context, slug, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Post with slug %s not found", slug)
		}
		return nil, err
	}
	if !post.IsPublished() && post.AuthorID != viewerID {
		return nil, models.NewNotFound("Post with slug %s not found", slug)
	}

	post.ContentHTML = RenderContent(post.Content)
	return post, nil
}

func (s *postService) FindRelated(ctx context.Context, id, viewerID string, limit int) ([]models.Post, error) {
	post, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() && post.AuthorID != viewerID {
		return nil, models.NewNotFound("Post with ID %s not found", id)
	}

	if limit < 1 {
		limit = defaultRelatedLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return s.postRepo.GetRelated(ctx, post, limit)
}

func (s *postService) Update(ctx context.Context, id string, req models.UpdatePostRequest, userID string) (*models.Post, error) {
	post, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Check ownership
	if post.AuthorID != userID {
		return nil, models.NewForbidden("You can only update your own posts")
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if post.Slug == "" {
		if post.Slug, err = s.newSlug(ctx, "", post.Title); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if post.Excerpt == "" {
		post.Excerpt = DeriveExcerpt(post.Content, excerptLength)
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = *req.FeaturedImage
	}
	if req.Status != nil {
		post.SetStatus(models.PostStatus(*req.Status), time.Now())
	}

	replaceTags := req.Tags != nil
	if replaceTags {
		if post.Tags, err = s.tags.ResolveTags(ctx, req.Tags); err != nil {
			return nil, err
		}
	}

	post.Author = nil
	if err := s.postRepo.Update(ctx, post, replaceTags); err != nil {
		return nil, err
	}

	s.refreshTagUsage(ctx)

	return s.get(ctx, post.ID)
}

func (s *postService) Remove(ctx context.Context, id, userID string) error {
	post, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return models.NewForbidden("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFound("Post with ID %s not found", id)
		}
		return err
	}

	s.refreshTagUsage(ctx)
	return nil
}

func (s *postService) IncrementLikes(ctx context.Context, id string) error {
	return s.adjust(ctx, id, "likes_count", 1)
}

func (s *postService) DecrementLikes(ctx context.Context, id string) error {
	return s.adjust(ctx, id, "likes_count", -1)
}

func (s *postService) IncrementComments(ctx context.Context, id string) error {
	return s.adjust(ctx, id, "comments_count", 1)
}

func (s *postService) DecrementComments(ctx context.Context, id string) error {
	return s.adjust(ctx, id, "comments_count", -1)
}

func (s *postService) adjust(ctx context.Context, id, column string, delta int) error {
	if err := s.postRepo.IncrementColumn(ctx, id, column, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFound("Post with ID %s not found", id)
		}
		return err
	}
	return nil
}

func (s *postService) get(ctx context.Context, id string) (*models.Post, error) {
	if !helper.IsValidID(id) {
		return nil, models.NewBadRequest("Invalid post ID")
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Post with ID %s not found", id)
		}
		return nil, err
	}
	return post, nil
}

// refreshTagUsage is best effort: a failure only leaves tag statistics stale.
func (s *postService) refreshTagUsage(ctx context.Context) {
	if err := s.tags.RefreshUsage(ctx); err != nil {
		log.Printf("failed to refresh tag usage: %v", err)
	}
}
