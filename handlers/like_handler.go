package handlers

import (
	"blog-api/helper"
	"blog-api/models"
	"blog-api/services"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeService services.LikeService
	Helper      *helper.HTTPHelper
}

func NewLikeHandler(likeService services.LikeService, h *helper.HTTPHelper) *LikeHandler {
	return &LikeHandler{likeService: likeService, Helper: h}
}

func (h *LikeHandler) ToggleLike(c *gin.Context) {
	var req models.ToggleLikeRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	result, err := h.likeService.Toggle(c.Request.Context(), req, viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", result)
}

func (h *LikeHandler) GetUserLikes(c *gin.Context) {
	targetType := models.LikeTargetType(c.Query("targetType"))

	likes, err := h.likeService.GetUserLikes(c.Request.Context(), viewerID(c), targetType)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", likes)
}

func (h *LikeHandler) GetTargetLikes(c *gin.Context) {
	targetType := models.LikeTargetType(c.Query("targetType"))

	likes, err := h.likeService.GetTargetLikes(c.Request.Context(), c.Param("id"), targetType)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", likes)
}

func (h *LikeHandler) GetLikesCount(c *gin.Context) {
	targetType := models.LikeTargetType(c.Query("targetType"))

	count, err := h.likeService.GetLikesCount(c.Request.Context(), c.Param("id"), targetType)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{"count": count})
}

func (h *LikeHandler) CheckUserLiked(c *gin.Context) {
	targetType := models.LikeTargetType(c.Query("targetType"))

	liked, err := h.likeService.CheckUserLiked(c.Request.Context(), viewerID(c), c.Param("id"), targetType)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{"liked": liked})
}

func (h *LikeHandler) CheckMultipleUserLiked(c *gin.Context) {
	var req models.CheckMultipleLikesRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	result, err := h.likeService.CheckMultipleUserLiked(c.Request.Context(), viewerID(c), req.TargetIDs, models.LikeTargetType(req.TargetType))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", result)
}
