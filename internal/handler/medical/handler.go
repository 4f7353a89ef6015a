package medical

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-portal/internal/handler"
	"github.com/jwalitptl/patient-portal/internal/service/medical"
	"github.com/jwalitptl/patient-portal/pkg/errors"
	"github.com/jwalitptl/patient-portal/pkg/httputil"
)

type Handler struct {
	*handler.Base
	service *medical.Service
}

func NewHandler(base *handler.Base, service *medical.Service) *Handler {
	return &Handler{Base: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/record", h.GetRecord)
}

func (h *Handler) GetRecord(c *gin.Context) {
	lang := h.Lang(c)

	view, err := h.service.View(c.Request.Context(), h.Now(), lang)
	if err != nil {
		httputil.RespondWithError(c, errors.Unavailable("medical record", err))
		return
	}

	h.Observe("record", "", "")
	httputil.RespondWithSuccess(c, view)
}
