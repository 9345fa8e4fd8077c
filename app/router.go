package app

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Router exposes the admin surface of the long-running poller:
// liveness and readiness of the database and the conversation store.
func (app *Application) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Pre(middleware.RemoveTrailingSlash())

	e.GET("/healthz", app.handleHealthz)
	e.GET("/readyz", app.handleReadyz)

	return e
}

func (app *Application) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (app *Application) handleReadyz(c echo.Context) error {
	sqlDB, err := app.UserStore.DB().DB()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if err := sqlDB.PingContext(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if err := app.Redis.Ping(c.Request().Context()).Err(); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
