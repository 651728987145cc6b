package handlers

import (
	"blog-api/helper"
	"blog-api/middleware"
	"blog-api/models"
	"blog-api/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
	Helper      *helper.HTTPHelper
}

func NewUserHandler(userService services.UserService, h *helper.HTTPHelper) *UserHandler {
	return &UserHandler{userService: userService, Helper: h}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "User created successfully", user)
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.FindAll(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	actor, _ := middleware.CurrentUser(c)
	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "User updated successfully", user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "User deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := formImage(c)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	defer file.Close()

	actor, _ := middleware.CurrentUser(c)
	user, err := h.userService.UpdateAvatar(c.Request.Context(), c.Param("id"), file, actor)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Avatar updated successfully", user)
}
