package doctor

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/model"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/service/doctor"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/service/review"
	apperrors "github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/httputil"
)

type Handler struct {
	doctors *doctor.Service
	reviews *review.Service
}

func NewHandler(doctors *doctor.Service, reviews *review.Service) *Handler {
	return &Handler{doctors: doctors, reviews: reviews}
}

// RegisterRoutes wires the public doctor directory. Browsing doctors,
// their reviews and ratings requires no authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.List)
		doctors.GET("/:id", h.Get)
		doctors.GET("/:id/reviews", h.ListReviews)
		doctors.GET("/:id/rating", h.GetRating)
	}
}

func (h *Handler) List(c *gin.Context) {
	var filters model.DoctorFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	doctors, err := h.doctors.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	doc, err := h.doctors.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doc)
}

func (h *Handler) ListReviews(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	reviews, err := h.reviews.ListForDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, reviews)
}

func (h *Handler) GetRating(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	rating, err := h.reviews.GetDoctorRating(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, rating)
}
