package handlers

import (
	"blog-api/helper"
	"blog-api/models"
	"blog-api/services"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	searchService services.SearchService
	Helper        *helper.HTTPHelper
}

func NewSearchHandler(searchService services.SearchService, h *helper.HTTPHelper) *SearchHandler {
	return &SearchHandler{searchService: searchService, Helper: h}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var params models.SearchParams
	if !h.Helper.BindQuery(c, &params) {
		return
	}

	posts, total, err := h.searchService.SearchPosts(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	page, limit := services.NormalizePage(params.Page, params.Limit, 10)
	h.Helper.SendSuccess(c, "Success", gin.H{
		"posts":      posts,
		"pagination": h.Helper.GeneratePaging(c, page, limit, total),
	})
}
