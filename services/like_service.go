package services

import (
	"context"
	"errors"

	"blog-api/helper"
	"blog-api/models"
	"blog-api/repositories"

	"gorm.io/gorm"
)

type LikeService interface {
	Toggle(ctx context.Context, req models.ToggleLikeRequest, userID string) (*models.ToggleLikeResponse, error)
	GetUserLikes(ctx context.Context, userID string, targetType models.LikeTargetType) ([]models.Like, error)
	GetTargetLikes(ctx context.Context, targetID string, targetType models.LikeTargetType) ([]models.Like, error)
	GetLikesCount(ctx context.Context, targetID string, targetType models.LikeTargetType) (int64, error)
	CheckUserLiked(ctx context.Context, userID, targetID string, targetType models.LikeTargetType) (bool, error)
	CheckMultipleUserLiked(ctx context.Context, userID string, targetIDs []string, targetType models.LikeTargetType) (map[string]bool, error)
}

type likeService struct {
	likeRepo repositories.LikeRepository
	posts    PostService
	comments CommentService
}

func NewLikeService(likeRepo repositories.LikeRepository, posts PostService, comments CommentService) LikeService {
	return &likeService{
		likeRepo: likeRepo,
		posts:    posts,
		comments: comments,
	}
}

// Toggle likes the target, or unlikes it when the user already did, and
// moves the target's counter to match. The returned count is a fresh count
// of like records rather than the counter.
func (s *likeService) Toggle(ctx context.Context, req models.ToggleLikeRequest, userID string) (*models.ToggleLikeResponse, error) {
	targetType := models.LikeTargetType(req.TargetType)
	if err := s.validateTarget(ctx, req.TargetID, targetType, userID); err != nil {
		return nil, err
	}

	var liked bool
	existing, err := s.likeRepo.Find(ctx, userID, req.TargetID, targetType)
	switch {
	case err == nil:
		if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		if err := s.adjustTarget(ctx, req.TargetID, targetType, false); err != nil {
			return nil, err
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		like := &models.Like{UserID: userID, TargetID: req.TargetID, TargetType: targetType}
		if err := s.likeRepo.Create(ctx, like); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, models.NewConflict("Like already exists")
			}
			return nil, err
		}
		if err := s.adjustTarget(ctx, req.TargetID, targetType, true); err != nil {
			return nil, err
		}
		liked = true

	default:
		return nil, err
	}

	count, err := s.likeRepo.Count(ctx, req.TargetID, targetType)
	if err != nil {
		return nil, err
	}

	return &models.ToggleLikeResponse{Liked: liked, LikesCount: count}, nil
}

func (s *likeService) validateTarget(ctx context.Context, targetID string, targetType models.LikeTargetType, viewerID string) error {
	if !helper.IsValidID(targetID) {
		return models.NewBadRequest("Invalid target ID")
	}

	var err error
	switch targetType {
	case models.LikeTargetPost:
		_, err = s.posts.FindOne(ctx, targetID, viewerID)
	case models.LikeTargetComment:
		_, err = s.comments.FindOne(ctx, targetID)
	default:
		return models.NewBadRequest("Invalid target type")
	}

	var notFound models.ErrorNotFound
	if errors.As(err, &notFound) {
		if targetType == models.LikeTargetPost {
			return models.NewNotFound("Post not found")
		}
		return models.NewNotFound("Comment not found")
	}
	return err
}

func (s *likeService) adjustTarget(ctx context.Context, targetID string, targetType models.LikeTargetType, increment bool) error {
	switch {
	case targetType == models.LikeTargetPost && increment:
		return s.posts.IncrementLikes(ctx, targetID)
	case targetType == models.LikeTargetPost:
		return s.posts.DecrementLikes(ctx, targetID)
	case increment:
		return s.comments.IncrementLikes(ctx, targetID)
	default:
		return s.comments.DecrementLikes(ctx, targetID)
	}
}

func (s *likeService) GetUserLikes(ctx context.Context, userID string, targetType models.LikeTargetType) ([]models.Like, error) {
	if targetType != "" && !targetType.Valid() {
		return nil, models.NewBadRequest("Invalid target type")
	}
	return s.likeRepo.GetByUser(ctx, userID, targetType)
}

func (s *likeService) GetTargetLikes(ctx context.Context, targetID string, targetType models.LikeTargetType) ([]models.Like, error) {
	if err := validateTargetRef(targetID, targetType); err != nil {
		return nil, err
	}
	return s.likeRepo.GetByTarget(ctx, targetID, targetType)
}

func (s *likeService) GetLikesCount(ctx context.Context, targetID string, targetType models.LikeTargetType) (int64, error) {
	if err := validateTargetRef(targetID, targetType); err != nil {
		return 0, err
	}
	return s.likeRepo.Count(ctx, targetID, targetType)
}

func (s *likeService) CheckUserLiked(ctx context.Context, userID, targetID string, targetType models.LikeTargetType) (bool, error) {
	if err := validateTargetRef(targetID, targetType); err != nil {
		return false, err
	}

	_, err := s.likeRepo.Find(ctx, userID, targetID, targetType)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// CheckMultipleUserLiked answers for every requested id with a single query.
// Ids the user has not liked, including malformed ones, map to false.
func (s *likeService) CheckMultipleUserLiked(ctx context.Context, userID string, targetIDs []string, targetType models.LikeTargetType) (map[string]bool, error) {
	if !targetType.Valid() {
		return nil, models.NewBadRequest("Invalid target type")
	}

	result := make(map[string]bool, len(targetIDs))
	valid := make([]string, 0, len(targetIDs))
	for _, id := range targetIDs {
		result[id] = false
		if helper.IsValidID(id) {
			valid = append(valid, id)
		}
	}

	liked, err := s.likeRepo.GetLikedTargetIDs(ctx, userID, valid, targetType)
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		result[id] = true
	}

	return result, nil
}

func validateTargetRef(targetID string, targetType models.LikeTargetType) error {
	if !helper.IsValidID(targetID) {
		return models.NewBadRequest("Invalid target ID")
	}
	if !targetType.Valid() {
		return models.NewBadRequest("Invalid target type")
	}
	return nil
}
