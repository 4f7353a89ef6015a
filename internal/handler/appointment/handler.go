package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-portal/internal/handler"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/service/appointment"
	"github.com/jwalitptl/patient-portal/pkg/errors"
	"github.com/jwalitptl/patient-portal/pkg/httputil"
)

type Handler struct {
	*handler.Base
	service *appointment.Service
}

func NewHandler(base *handler.Base, service *appointment.Service) *Handler {
	return &Handler{Base: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/appointments", h.ListAppointments)
}

// ListAppointments serves the appointment view for ?status=all|upcoming|past.
func (h *Handler) ListAppointments(c *gin.Context) {
	lang := h.Lang(c)
	filter := appointment.ParseFilter(c.Query("status"))

	view, err := h.service.View(c.Request.Context(), filter, lang)
	if err != nil {
		httputil.RespondWithError(c, errors.Unavailable("appointments", err))
		return
	}

	h.Observe("appointments", string(view.Filter), emptyKind(view))
	httputil.RespondWithSuccess(c, view)
}

func emptyKind(view *model.AppointmentView) string {
	if view.EmptyState == nil {
		return ""
	}
	return view.EmptyState.Kind
}
