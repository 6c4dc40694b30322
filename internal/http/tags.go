package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/domain"
)

type createTagRequest struct {
	Name string `json:"name" binding:"required"`
}

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) listTags(c *gin.Context, caller *domain.User) {
	tags, err := h.tags.ListTags(c.Request.Context(), caller)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]TagResponse, len(tags))
	for i := range tags {
		resp[i] = tagToResponse(tags[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createTag(c *gin.Context, caller *domain.User) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	tag, err := h.tags.CreateTag(c.Request.Context(), caller, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tagToResponse(*tag))
}

func tagToResponse(tag domain.Tag) TagResponse {
	return TagResponse{
		ID:   tag.ID,
		Name: tag.Name,
	}
}
