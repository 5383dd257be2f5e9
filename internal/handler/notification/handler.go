package notification

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nguyenduchuy271197/healthcare-sub000/internal/middleware"
	"github.com/nguyenduchuy271197/healthcare-sub000/internal/service/notification"
	apperrors "github.com/nguyenduchuy271197/healthcare-sub000/pkg/errors"
	"github.com/nguyenduchuy271197/healthcare-sub000/pkg/httputil"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.PUT("/:id/read", h.MarkRead)
	}
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.AuthenticationRequired())
		return
	}

	unreadOnly := false
	if v := c.Query("unread"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid unread flag"))
			return
		}
		unreadOnly = parsed
	}

	notifications, err := h.service.ListForActor(c.Request.Context(), actor, unreadOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.AuthenticationRequired())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid notification ID"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), actor, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"read": true})
}
