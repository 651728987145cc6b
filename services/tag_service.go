// services/tag_service.go
package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"blog-api/helper"
	"blog-api/models"
	"blog-api/repositories"

	"gorm.io/gorm"
)

type TagService interface {
	CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error)
	GetTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id string) (*models.Tag, error)
	ResolveTags(ctx context.Context, names []string) ([]models.Tag, error)
	RefreshUsage(ctx context.Context) error
}

type tagService struct {
	tagRepo  repositories.TagRepository
	postRepo repositories.PostRepository
}

func NewTagService(tagRepo repositories.TagRepository, postRepo repositories.PostRepository) TagService {
	return &tagService{
		tagRepo:  tagRepo,
		postRepo: postRepo,
	}
}

// NormalizeTags trims, lowercases and de-duplicates tag names, keeping order.
func NormalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func (s *tagService) CreateTag(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		return nil, models.NewBadRequest("Tag name is required")
	}

	// Check if tag already exists
	_, err := s.tagRepo.GetByName(ctx, name)
	if err == nil {
		return nil, models.NewConflict("Tag %s already exists", name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflict("Tag %s already exists", name)
		}
		return nil, err
	}

	return tag, nil
}

func (s *tagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

func (s *tagService) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	if !helper.IsValidID(id) {
		return nil, models.NewBadRequest("Invalid tag ID")
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Tag with ID %s not found", id)
		}
		return nil, err
	}
	return tag, nil
}

// ResolveTags returns the tags for the given names, creating missing ones.
func (s *tagService) ResolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	names = NormalizeTags(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	existing, err := s.tagRepo.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.Tag, len(existing))
	for _, tag := range existing {
		byName[tag.Name] = tag
	}

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if tag, ok := byName[name]; ok {
			tags = append(tags, tag)
			continue
		}

		tag := &models.Tag{Name: name}
		if err := s.tagRepo.Create(ctx, tag); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, err
			}
			// Created concurrently by another request
			if tag, err = s.tagRepo.GetByName(ctx, name); err != nil {
				return nil, err
			}
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

// RefreshUsage recounts published posts per tag and recomputes trending
// scores, which decay with the age of the tag.
func (s *tagService) RefreshUsage(ctx context.Context) error {
	tagCounts, err := s.postRepo.CountPublishedByTag(ctx)
	if err != nil {
		return err
	}

	allTags, err := s.tagRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	for i := range allTags {
		allTags[i].UsageCount = tagCounts[allTags[i].ID]

		daysSinceCreated := time.Since(allTags[i].CreatedAt).Hours() / 24
		if daysSinceCreated > 1 {
			allTags[i].TrendingScore = float64(allTags[i].UsageCount) / math.Log(daysSinceCreated+1)
		} else {
			allTags[i].TrendingScore = float64(allTags[i].UsageCount)
		}
	}

	return s.tagRepo.BulkUpdate(ctx, allTags)
}
