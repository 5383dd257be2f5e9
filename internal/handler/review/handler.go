package review

import (
	"github.com/gin-gonic/gin"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/middleware"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/service/review"
	apperrors "github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/httputil"
)

type Handler struct {
	service *review.Service
}

func NewHandler(service *review.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reviews := r.Group("/reviews")
	reviews.Use(middleware.RequireRole(model.RolePatient))
	{
		reviews.POST("", h.Create)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.AuthenticationRequired())
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	rev, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, rev)
}
