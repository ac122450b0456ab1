package handlers

import (
	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/services"
	"kas-kelas/internal/pkg/pagination"
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account management endpoints
type UserHandler struct {
	userService UserUseCase
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserUseCase) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateMemberRequest represents create member request body
type CreateMemberRequest struct {
	Name     string `json:"name" validate:"required,max=100" example:"Ihsandy Wahyu Dirgantara"`
	Email    string `json:"email" validate:"required,max=100" example:"ihsandy@infor24"`
	Password string `json:"password" validate:"required,min=8" example:"rahasia123"`
}

// ChangePasswordRequest represents change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ============================================================
// Users
// ============================================================

// ListUsers lists accounts
// @Summary List users
// @Description Paginated account list, optionally filtered by role (treasurer and administrator)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "ANGGOTA, BENDAHARA or ADMINISTRATOR"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.ListUsers(c.Context(), principal(c), c.Query("role"), params.Offset, params.Limit)
	if err != nil {
		return handleError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(toUserResponses(users), params, total))
}

// ResetPassword resets a user's password to the default
// @Summary Reset user password
// @Description Set the configured default password and revoke the user's sessions (administrator only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	newPassword, err := h.userService.ResetPassword(c.Context(), principal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to reset password")
	}

	return response.Success(c, "Password reset successfully", fiber.Map{
		"new_password": newPassword,
	})
}

// ============================================================
// Members
// ============================================================

// ListMembers lists member accounts
// @Summary List members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /members [get]
func (h *UserHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.userService.ListMembers(c.Context(), principal(c))
	if err != nil {
		return handleError(c, err, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", toUserResponses(members))
}

// CreateMember creates a member account
// @Summary Create member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMemberRequest true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *UserHandler) CreateMember(c *fiber.Ctx) error {
	var req CreateMemberRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.userService.CreateMember(c.Context(), principal(c), &services.CreateMemberInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return handleError(c, err, "Failed to create member")
	}

	return response.Created(c, "Member created successfully", user.ToResponse())
}

// DeleteMember removes a member account
// @Summary Delete member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [delete]
func (h *UserHandler) DeleteMember(c *fiber.Ctx) error {
	if err := h.userService.DeleteMember(c.Context(), principal(c), c.Params("id")); err != nil {
		return handleError(c, err, "Failed to delete member")
	}

	return response.Success(c, "Member deleted successfully", nil)
}

// ============================================================
// Profile
// ============================================================

// GetProfile returns the current user
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(c.Context(), principal(c))
	if err != nil {
		return handleError(c, err, "Failed to get profile")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// ChangePassword changes the caller's password
// @Summary Change password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	err := h.userService.ChangePassword(c.Context(), principal(c), &services.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return handleError(c, err, "Failed to change password")
	}

	return response.Success(c, "Password changed successfully", nil)
}

func toUserResponses(users []*models.User) []*models.UserResponse {
	data := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, u.ToResponse())
	}
	return data
}
