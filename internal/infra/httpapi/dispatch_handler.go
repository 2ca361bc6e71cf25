// internal/infra/httpapi/dispatch_handler.go
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RunDispatch triggers one dispatch run and returns its summary. The run
// reads "now" itself; no input is required. Individual send failures still
// produce a 200 with the failures in the log; only a failed due query is a 500.
func (h *Handlers) RunDispatch(c echo.Context) error {
	summary, err := h.dispatchService.Run(c.Request().Context())
	if err != nil {
		h.logger.WithError(err).Error("Dispatch run failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, summary)
}
