package services

import (
	"context"
	"strings"

	"blog-api/helper"
	"blog-api/models"
	"blog-api/repositories"
)

type SearchService interface {
	SearchPosts(ctx context.Context, params models.SearchParams) ([]models.Post, int64, error)
}

type searchService struct {
	postRepo repositories.PostRepository
}

func NewSearchService(postRepo repositories.PostRepository) SearchService {
	return &searchService{postRepo: postRepo}
}

// SearchPosts runs a full text query over published posts.
func (s *searchService) SearchPosts(ctx context.Context, params models.SearchParams) ([]models.Post, int64, error) {
	if params.Author != "" && !helper.IsValidID(params.Author) {
		return nil, 0, models.NewBadRequest("Invalid author ID")
	}

	var tags []string
	for _, raw := range params.Tags {
		tags = append(tags, strings.Split(raw, ",")...)
	}

	filter := models.PostFilter{
		Status:   models.PostStatusPublished,
		AuthorID: params.Author,
		Tags:     NormalizeTags(tags),
		Search:   strings.TrimSpace(params.Query),
		SortBy:   "published_at",
	}
	if filter.Search != "" {
		filter.SortBy = "relevance"
	}
	filter.Page, filter.Limit = NormalizePage(params.Page, params.Limit, defaultPostLimit)

	return s.postRepo.GetList(ctx, filter)
}
