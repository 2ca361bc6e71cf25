// internal/infra/httpapi/server.go
package httpapi

import (
	"net/http"

	"forget_me_not/internal/app"
	"forget_me_not/internal/domain/outreach"
	"forget_me_not/internal/domain/person"
	"forget_me_not/internal/domain/push"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Handlers bundles the HTTP surface: person lifecycle, outreach and snooze
// actions, push-token registration and the manual dispatch trigger.
type Handlers struct {
	outreachService app.OutreachService
	dispatchService app.DispatchService
	suggestions     *app.SuggestionService
	personRepo      person.Repository
	outreachRepo    outreach.Repository
	tokenRepo       push.Repository
	logger          *logrus.Entry
}

func NewHandlers(
	outreachService app.OutreachService,
	dispatchService app.DispatchService,
	suggestions *app.SuggestionService,
	personRepo person.Repository,
	outreachRepo outreach.Repository,
	tokenRepo push.Repository,
	logger *logrus.Entry,
) *Handlers {
	return &Handlers{
		outreachService: outreachService,
		dispatchService: dispatchService,
		suggestions:     suggestions,
		personRepo:      personRepo,
		outreachRepo:    outreachRepo,
		tokenRepo:       tokenRepo,
		logger:          logger,
	}
}

// NewServer builds the echo instance with all routes registered.
func NewServer(h *Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	h.Register(e)
	return e
}

func (h *Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	people := e.Group("/people")
	people.POST("", h.CreatePerson)
	people.GET("", h.ListPeople)
	people.GET("/:id", h.GetPerson)
	people.PUT("/:id", h.UpdatePerson)
	people.DELETE("/:id", h.DeletePerson)
	people.POST("/:id/outreach", h.RecordOutreach)
	people.POST("/:id/snooze", h.SnoozePerson)

	e.POST("/push-tokens", h.SavePushToken)
	e.DELETE("/push-tokens", h.DeletePushToken)
	e.POST("/jobs/dispatch", h.RunDispatch)
}

func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
