package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "postboard/internal/errors"
	"postboard/internal/service"
)

// PostHandler handles post CRUD endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// ListResponse is the envelope for post listings.
type ListResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       interface{}         `json:"data"`
	Pagination *service.Pagination `json:"pagination"`
}

// List godoc
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size, clamped to [1,100], default 7"
// @Param category query string false "Case-insensitive category filter"
// @Success 200 {object} ListResponse
// @Failure 500 {object} errors.Response
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	posts, pagination, err := h.postService.List(c.Request().Context(), service.ListPostsInput{
		Page:     page,
		Limit:    limit,
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, ListResponse{
		Success:    true,
		Message:    "Posts retrieved successfully",
		Data:       posts,
		Pagination: pagination,
	})
}

// Get godoc
// @Summary Fetch a single post by id
// @Tags posts
// @Produce json
// @Param id path int true "Post id"
// @Param category query string false "Case-insensitive category filter"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := h.postService.Get(c.Request().Context(), id, c.QueryParam("category"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Post retrieved successfully",
		Data:    post,
	})
}

// Create godoc
// @Summary Create a post owned by the requester
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post fields"
// @Success 201 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	var in service.CreatePostInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	post, err := h.postService.Create(c.Request().Context(), claims.UserID, in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, apperrors.Response{
		Success: true,
		Message: "Post successfully created",
		Data:    post,
	})
}

// Update godoc
// @Summary Update fields of an owned post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post id"
// @Param request body service.UpdatePostInput true "Fields to change"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 403 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}

	var in service.UpdatePostInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	post, err := h.postService.Update(c.Request().Context(), claims.UserID, id, in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Updated successfully",
		Data:    post,
	})
}

// Delete godoc
// @Summary Delete an owned post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post id"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 403 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.postService.Delete(c.Request().Context(), claims.UserID, id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Post deleted successfully",
	})
}

func parsePostID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidPostID
	}
	return uint(id), nil
}
