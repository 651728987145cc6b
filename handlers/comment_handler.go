package handlers

import (
	"blog-api/helper"
	"blog-api/middleware"
	"blog-api/models"
	"blog-api/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService services.CommentService
	Helper         *helper.HTTPHelper
}

func NewCommentHandler(commentService services.CommentService, h *helper.HTTPHelper) *CommentHandler {
	return &CommentHandler{commentService: commentService, Helper: h}
}

func commentFilter(params models.CommentListParams) models.CommentFilter {
	filter := models.CommentFilter{
		PostID:    params.Post,
		AuthorID:  params.Author,
		Status:    models.CommentStatus(params.Status),
		Page:      params.Page,
		Limit:     params.Limit,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	}
	if params.ParentComment != "" {
		parent := params.ParentComment
		filter.ParentCommentID = &parent
	}
	return filter
}

func (h *CommentHandler) sendComments(c *gin.Context, comments []models.Comment, total int64, filter models.CommentFilter) {
	page, limit := services.NormalizePage(filter.Page, filter.Limit, 20)
	h.Helper.SendSuccess(c, "Success", gin.H{
		"comments":   comments,
		"pagination": h.Helper.GeneratePaging(c, page, limit, total),
	})
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req models.CreateCommentRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), req, viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Comment created successfully", comment)
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	var params models.CommentListParams
	if !h.Helper.BindQuery(c, &params) {
		return
	}

	filter := commentFilter(params)
	comments, total, err := h.commentService.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.sendComments(c, comments, total, filter)
}

func (h *CommentHandler) GetPostComments(c *gin.Context) {
	var params models.CommentListParams
	if !h.Helper.BindQuery(c, &params) {
		return
	}

	filter := commentFilter(params)
	comments, total, err := h.commentService.FindByPost(c.Request.Context(), c.Param("postId"), filter)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.sendComments(c, comments, total, filter)
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, err := h.commentService.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", comment)
}

func (h *CommentHandler) GetThread(c *gin.Context) {
	thread, err := h.commentService.GetThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", thread)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req models.UpdateCommentRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	user, _ := middleware.CurrentUser(c)
	isAdmin := user.Roles.Has(models.RoleAdmin, models.RoleModerator)

	comment, err := h.commentService.Update(c.Request.Context(), c.Param("id"), req, user.ID, isAdmin)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Comment updated successfully", comment)
}

// ModerateComment is routed behind RequireRole(admin, moderator).
func (h *CommentHandler) ModerateComment(c *gin.Context) {
	var req models.ModerateCommentRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Moderate(c.Request.Context(), c.Param("id"), models.CommentStatus(req.Status))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Comment moderated successfully", comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.commentService.Remove(c.Request.Context(), c.Param("id"), user.ID, user.IsAdmin()); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Comment deleted successfully", h.Helper.EmptyJsonMap())
}
