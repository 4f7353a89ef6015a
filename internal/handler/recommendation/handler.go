package recommendation

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-portal/internal/handler"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/service/recommendation"
	"github.com/jwalitptl/patient-portal/pkg/errors"
	"github.com/jwalitptl/patient-portal/pkg/httputil"
)

type Handler struct {
	*handler.Base
	service *recommendation.Service
}

func NewHandler(base *handler.Base, service *recommendation.Service) *Handler {
	return &Handler{Base: base, service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	recs := r.Group("/recommendations")
	{
		recs.GET("", h.ListRecommendations)
		recs.GET("/categories", h.ListCategories)
	}
}

// ListRecommendations serves ?category=<name>|all&priority=high|medium|low|all.
func (h *Handler) ListRecommendations(c *gin.Context) {
	lang := h.Lang(c)
	query := model.RecommendationQuery{
		Category: c.Query("category"),
		Priority: model.Priority(c.Query("priority")),
	}

	view, err := h.service.View(c.Request.Context(), query, lang)
	if err != nil {
		httputil.RespondWithError(c, errors.Unavailable("recommendations", err))
		return
	}

	kind := ""
	if view.EmptyState != nil {
		kind = view.EmptyState.Kind
	}
	h.Observe("recommendations", string(recommendation.ClassifyEmpty(query)), kind)
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, errors.Unavailable("categories", err))
		return
	}

	h.Observe("categories", model.FilterAll, "")
	httputil.RespondWithSuccess(c, categories)
}
