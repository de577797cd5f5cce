package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/campus-portal/internal/dto"
	apierrors "github.com/yukikurage/campus-portal/internal/errors"
	"github.com/yukikurage/campus-portal/internal/middleware"
	"github.com/yukikurage/campus-portal/internal/services"
	"github.com/yukikurage/campus-portal/internal/utils"
)

type LibraryHandler struct {
	libraryService *services.LibraryService
}

func NewLibraryHandler(libraryService *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// LendInfo returns the lend records of every reader linked to the current student
func (h *LibraryHandler) LendInfo(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var (
		infos []services.ReaderLendInfo
		err   error
	)
	if record, ok := middleware.GetClassifiedUser(c); ok {
		infos, err = h.libraryService.PersonLendInfo(c.Request.Context(), record, user.Username)
	} else {
		infos, err = h.libraryService.LendInfo(c.Request.Context(), user)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPersonAccountRequired):
			apierrors.WrongAccountType(c, err.Error())
		case errors.Is(err, services.ErrNoLinkedReader):
			apierrors.NotFound(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to fetch lend info")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLendInfoResponse(user.Username, infos))
}

// SearchBooks searches books by the "q" keyword
func (h *LibraryHandler) SearchBooks(c *gin.Context) {
	pagination := utils.GetPaginationParams(c)

	books, total, err := h.libraryService.SearchBooks(c.Request.Context(), c.Query("q"), pagination)
	if err != nil {
		apierrors.InternalError(c, "Failed to search books")
		return
	}

	c.JSON(http.StatusOK, dto.BookListResponse{
		Books:      books,
		Pagination: pagination.Response(total),
	})
}
