package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cagmc/jwtauth/internal/models"
	"github.com/cagmc/jwtauth/internal/repo"
	"github.com/cagmc/jwtauth/internal/service"
	"github.com/cagmc/jwtauth/internal/transport"
	"github.com/cagmc/jwtauth/internal/util"
	"github.com/cagmc/jwtauth/pkg/logging"
)

type MagicalObjectHTTP struct {
	Svc *service.MagicalObjectService
}

func (h *MagicalObjectHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "magical.list")

	f := repo.MagicalObjectFilter{Name: c.QueryParam("name")}
	for _, e := range util.SplitList(c.QueryParams()["elemental"]) {
		f.Elementals = append(f.Elementals, models.ElementalType(e))
	}

	var err error
	if f.DiscoveredFrom, err = util.ParseTimeParam(c.QueryParam("discovered_from")); err != nil {
		l.Warn("list_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "discovered_from: "+err.Error())
	}
	if f.DiscoveredTo, err = util.ParseTimeParam(c.QueryParam("discovered_to")); err != nil {
		l.Warn("list_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "discovered_to: "+err.Error())
	}

	items, err := h.Svc.List(ctx, f)
	if err != nil {
		return httpError(err, "cannot list magical objects")
	}
	return c.JSON(http.StatusOK, transport.NewMagicalObjectItems(items))
}

func (h *MagicalObjectHTTP) Get(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	obj, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "cannot get magical object")
	}
	return c.JSON(http.StatusOK, transport.NewMagicalObjectView(obj))
}

func (h *MagicalObjectHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.MagicalObjectRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(ctx).Warn("create_failed", "handler", "magical.create", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	obj := req.Model()
	if err := h.Svc.Create(ctx, obj); err != nil {
		return httpError(err, "cannot create magical object")
	}
	return c.JSON(http.StatusCreated, transport.NewMagicalObjectView(obj))
}

func (h *MagicalObjectHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.MagicalObjectRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(ctx).Warn("update_failed", "handler", "magical.update", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	obj, err := h.Svc.Update(ctx, id, req.Model())
	if err != nil {
		return httpError(err, "cannot update magical object")
	}
	return c.JSON(http.StatusOK, transport.NewMagicalObjectView(obj))
}

func (h *MagicalObjectHTTP) Delete(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err, "cannot delete magical object")
	}
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "magical object not found")
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "magical object with this name already exists")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
	}
}
