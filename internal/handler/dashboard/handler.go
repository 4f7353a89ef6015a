package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-portal/internal/handler"
	"github.com/jwalitptl/patient-portal/internal/service/dashboard"
	"github.com/jwalitptl/patient-portal/pkg/errors"
	"github.com/jwalitptl/patient-portal/pkg/httputil"
)

type Handler struct {
	*handler.Base
	service *dashboard.Service
}

func NewHandler(base *handler.Base, service *dashboard.Service) *Handler {
	return &Handler{Base: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.GetDashboard)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	lang := h.Lang(c)

	view, err := h.service.View(c.Request.Context(), h.Now(), lang)
	if err != nil {
		httputil.RespondWithError(c, errors.Unavailable("dashboard", err))
		return
	}

	kind := ""
	if view.EmptyMessage != "" {
		kind = "no_appointments"
	}
	h.Observe("dashboard", "", kind)
	httputil.RespondWithSuccess(c, view)
}
