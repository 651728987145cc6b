package handlers

import (
	"strconv"

	"blog-api/helper"
	"blog-api/middleware"
	"blog-api/models"
	"blog-api/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService services.PostService
	Helper      *helper.HTTPHelper
}

func NewPostHandler(postService services.PostService, h *helper.HTTPHelper) *PostHandler {
	return &PostHandler{postService: postService, Helper: h}
}

func viewerID(c *gin.Context) string {
	user, _ := middleware.CurrentUser(c)
	return user.ID
}

func postFilter(c *gin.Context, params models.PostListParams) models.PostFilter {
	filter := models.PostFilter{
		Status:    models.PostStatus(params.Status),
		AuthorID:  params.Author,
		Search:    params.Search,
		ViewerID:  viewerID(c),
		Page:      params.Page,
		Limit:     params.Limit,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	}
	if params.Tag != "" {
		filter.Tags = []string{params.Tag}
	}
	return filter
}

func (h *PostHandler) sendPosts(c *gin.Context, posts []models.Post, total int64, filter models.PostFilter) {
	page, limit := services.NormalizePage(filter.Page, filter.Limit, 10)
	h.Helper.SendSuccess(c, "Success", gin.H{
		"posts":      posts,
		"pagination": h.Helper.GeneratePaging(c, page, limit, total),
	})
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), req, viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Post created successfully", post)
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	var params models.PostListParams
	if !h.Helper.BindQuery(c, &params) {
		return
	}

	filter := postFilter(c, params)
	posts, total, err := h.postService.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.sendPosts(c, posts, total, filter)
}

func (h *PostHandler) GetPublishedPosts(c *gin.Context) {
	var params models.PostListParams
	if !h.Helper.BindQuery(c, &params) {
		return
	}

	filter := postFilter(c, params)
	posts, total, err := h.postService.FindPublished(c.Request.Context(), filter)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.sendPosts(c, posts, total, filter)
}

func (h *PostHandler) GetPostsByAuthor(c *gin.Context) {
	var params models.PostListParams
	if !h.Helper.BindQuery(c, &params) {
		return
	}

	filter := postFilter(c, params)
	posts, total, err := h.postService.FindByAuthor(c.Request.Context(), c.Param("authorId"), filter)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.sendPosts(c, posts, total, filter)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.FindOne(c.Request.Context(), c.Param("id"), viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", post)
}

func (h *PostHandler) GetPostBySlug(c *gin.Context) {
	post, err := h.postService.FindBySlug(c.Request.Context(), c.Param("slug"), viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", post)
}

func (h *PostHandler) GetRelatedPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid limit", h.Helper.EmptyJsonMap())
		return
	}

	posts, err := h.postService.FindRelated(c.Request.Context(), c.Param("id"), viewerID(c), limit)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", posts)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req models.UpdatePostRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	post, err := h.postService.Update(c.Request.Context(), c.Param("id"), req, viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Post updated successfully", post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postService.Remove(c.Request.Context(), c.Param("id"), viewerID(c)); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Post deleted successfully", h.Helper.EmptyJsonMap())
}
