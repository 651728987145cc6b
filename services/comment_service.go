package services

import (
	"context"
	"errors"
	"time"

	"blog-api/helper"
	"blog-api/models"
	"blog-api/repositories"

	"gorm.io/gorm"
)

const (
	defaultCommentLimit = 20
	// MaxThreadDepth bounds how many reply levels GetThread expands.
	MaxThreadDepth = 32
)

type CommentService interface {
	Create(ctx context.Context, req models.CreateCommentRequest, authorID string) (*models.Comment, error)
	FindAll(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int64, error)
	FindByPost(ctx context.Context, postID string, filter models.CommentFilter) ([]models.Comment, int64, error)
	FindOne(ctx context.Context, id string) (*models.Comment, error)
	GetThread(ctx context.Context, id string) (*models.Comment, error)
	Update(ctx context.Context, id string, req models.UpdateCommentRequest, userID string, isAdmin bool) (*models.Comment, error)
	Moderate(ctx context.Context, id string, status models.CommentStatus) (*models.Comment, error)
	Remove(ctx context.Context, id, userID string, isAdmin bool) error
	IncrementLikes(ctx context.Context, id string) error
	DecrementLikes(ctx context.Context, id string) error
}

type commentService struct {
	commentRepo repositories.CommentRepository
	posts       PostService
	users       UserService
}

func NewCommentService(commentRepo repositories.CommentRepository, posts PostService, users UserService) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		posts:       posts,
		users:       users,
	}
}

func (s *commentService) Create(ctx context.Context, req models.CreateCommentRequest, authorID string) (*models.Comment, error) {
	post, err := s.posts.FindOne(ctx, req.PostID, authorID)
	if err != nil {
		return nil, err
	}

	var parentID *string
	if req.ParentCommentID != "" {
		parent, err := s.get(ctx, req.ParentCommentID)
		if err != nil {
			var notFound models.ErrorNotFound
			if errors.As(err, &notFound) {
				return nil, models.NewNotFound("Parent comment not found")
			}
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewBadRequest("Parent comment does not belong to this post")
		}
		parentID = &parent.ID
	}

	mentions, err := s.resolveMentions(ctx, req.Mentions)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:         req.Content,
		AuthorID:        authorID,
		PostID:          post.ID,
		ParentCommentID: parentID,
		Status:          models.CommentStatusApproved,
		Mentions:        mentions,
	}

	// The parent's replies are derived from parent_comment_id, so inserting
	// the child links it.
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.posts.IncrementComments(ctx, post.ID); err != nil {
		return nil, err
	}

	return s.get(ctx, comment.ID)
}

func (s *commentService) resolveMentions(ctx context.Context, ids []string) ([]models.UserSummary, error) {
	mentions := make([]models.UserSummary, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		user, err := s.users.FindOne(ctx, id)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, user.Summary())
	}
	return mentions, nil
}

func (s *commentService) FindAll(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int64, error) {
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit, defaultCommentLimit)
	if filter.Status == "" {
		filter.Status = models.CommentStatusApproved
	}
	if !filter.Status.Valid() {
		return nil, 0, models.NewBadRequest("Invalid comment status")
	}
	if filter.SortBy == "" {
		filter.SortBy = "createdAt"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	comments, total, err := s.commentRepo.GetList(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range comments {
		comments[i].SummarizeReplies()
	}
	return comments, total, nil
}

func (s *commentService) FindByPost(ctx context.Context, postID string, filter models.CommentFilter) ([]models.Comment, int64, error) {
	if !helper.IsValidID(postID) {
		return nil, 0, models.NewBadRequest("Invalid post ID")
	}
	filter.PostID = postID
	return s.FindAll(ctx, filter)
}

func (s *commentService) FindOne(ctx context.Context, id string) (*models.Comment, error) {
	return s.get(ctx, id)
}

// GetThread loads a comment with every descendant nested under it, one
// query per level, stopping after MaxThreadDepth levels.
func (s *commentService) GetThread(ctx context.Context, id string) (*models.Comment, error) {
	root, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	level := []*models.Comment{root}
	for depth := 0; depth < MaxThreadDepth && len(level) > 0; depth++ {
		byID := make(map[string]*models.Comment, len(level))
		ids := make([]string, 0, len(level))
		for _, c := range level {
			c.Replies = []*models.Comment{}
			byID[c.ID] = c
			ids = append(ids, c.ID)
		}

		replies, err := s.commentRepo.GetReplies(ctx, ids)
		if err != nil {
			return nil, err
		}

		for _, reply := range replies {
			if reply.ParentCommentID == nil {
				continue
			}
			if parent, ok := byID[*reply.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, reply)
			}
		}
		level = replies
	}

	for _, c := range level {
		c.Replies = []*models.Comment{}
	}

	return root, nil
}

func (s *commentService) Update(ctx context.Context, id string, req models.UpdateCommentRequest, userID string, isAdmin bool) (*models.Comment, error) {
	comment, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != userID && !isAdmin {
		return nil, models.NewForbidden("You can only update your own comments")
	}

	fields := map[string]interface{}{}
	if req.Content != nil {
		fields["content"] = *req.Content
		if !isAdmin {
			fields["is_edited"] = true
			fields["edited_at"] = time.Now()
		}
	}
	if req.Status != nil {
		status := models.CommentStatus(*req.Status)
		if !status.Valid() {
			return nil, models.NewBadRequest("Invalid comment status")
		}
		fields["status"] = status
	}

	if len(fields) == 0 {
		return comment, nil
	}

	if err := s.commentRepo.Update(ctx, comment.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Comment with ID %s not found", id)
		}
		return nil, err
	}

	return s.get(ctx, comment.ID)
}

// Moderate changes a comment's status without an ownership check. Callers
// must have verified the moderator role.
func (s *commentService) Moderate(ctx context.Context, id string, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, models.NewBadRequest("Invalid comment status")
	}
	raw := string(status)
	return s.Update(ctx, id, models.UpdateCommentRequest{Status: &raw}, "", true)
}

// Remove deletes a comment and its whole subtree, deepest level first. The
// post's comment counter drops by one whatever the subtree size.
func (s *commentService) Remove(ctx context.Context, id, userID string, isAdmin bool) error {
	comment, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID && !isAdmin {
		return models.NewForbidden("You can only delete your own comments")
	}

	levels := [][]string{{comment.ID}}
	seen := map[string]bool{comment.ID: true}
	frontier := []string{comment.ID}
	for len(frontier) > 0 {
		children, err := s.commentRepo.GetChildIDs(ctx, frontier)
		if err != nil {
			return err
		}

		next := make([]string, 0, len(children))
		for _, childID := range children {
			if !seen[childID] {
				seen[childID] = true
				next = append(next, childID)
			}
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = next
	}

	for i := len(levels) - 1; i >= 0; i-- {
		if err := s.commentRepo.DeleteByIDs(ctx, levels[i]); err != nil {
			return err
		}
	}

	if err := s.posts.DecrementComments(ctx, comment.PostID); err != nil {
		var notFound models.ErrorNotFound
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func (s *commentService) IncrementLikes(ctx context.Context, id string) error {
	return s.adjustLikes(ctx, id, 1)
}

func (s *commentService) DecrementLikes(ctx context.Context, id string) error {
	return s.adjustLikes(ctx, id, -1)
}

func (s *commentService) adjustLikes(ctx context.Context, id string, delta int) error {
	if err := s.commentRepo.IncrementLikes(ctx, id, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFound("Comment with ID %s not found", id)
		}
		return err
	}
	return nil
}

func (s *commentService) get(ctx context.Context, id string) (*models.Comment, error) {
	if !helper.IsValidID(id) {
		return nil, models.NewBadRequest("Invalid comment ID")
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Comment with ID %s not found", id)
		}
		return nil, err
	}
	comment.SummarizeReplies()
	return comment, nil
}
