package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/jwalitptl/patient-portal/internal/i18n"
	"github.com/jwalitptl/patient-portal/pkg/metrics"
)

// Base contains dependencies shared by the view handlers
type Base struct {
	DefaultLang language.Tag
	Now         func() time.Time
	Metrics     *metrics.Metrics
}

// NewBase creates a handler base using the wall clock
func NewBase(defaultLang language.Tag, m *metrics.Metrics) *Base {
	return &Base{
		DefaultLang: defaultLang,
		Now:         time.Now,
		Metrics:     m,
	}
}

// Lang resolves the display locale from the lang query parameter, then
// Accept-Language, and echoes it in Content-Language.
func (b *Base) Lang(c *gin.Context) language.Tag {
	tag := i18n.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"), b.DefaultLang)
	c.Header("Content-Language", tag.String())
	return tag
}

// Observe records a served view.
func (b *Base) Observe(view, filter, emptyKind string) {
	b.Metrics.ObserveView(view, filter, emptyKind)
}
