package immunization

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/barangay/records/internal/domain/resident"
	"github.com/barangay/records/internal/platform/apiresp"
	"github.com/barangay/records/internal/platform/auth"
	"github.com/barangay/records/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/child-immunization", auth.RequireAuthenticated())
	read.GET("", h.List)
	read.GET("/archived", h.ListArchived)
	read.GET("/vaccines", h.Vaccines)
	read.GET("/eligible-children", h.EligibleChildren)
	read.GET("/:id", h.Get)

	write := api.Group("/child-immunization", auth.RequireRole(auth.RoleHealthWorker))
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)
	write.POST("/:id/restore", h.Restore)
}

func (h *Handler) Create(c echo.Context) error {
	var r Record
	if err := apiresp.Bind(c, &r); err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), &r); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	var r Record
	if err := apiresp.Bind(c, &r); err != nil {
		return err
	}
	r.ID = id
	if err := h.svc.Update(c.Request().Context(), &r); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.Message(c, http.StatusOK, "immunization record archived")
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := apiresp.ParamID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.Restore(c.Request().Context(), id)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, r)
}

// Vaccines returns the full schedule, or the per-child split when child_id
// is given.
func (h *Handler) Vaccines(c echo.Context) error {
	childID, err := apiresp.QueryUUID(c, "child_id")
	if err != nil {
		return err
	}
	if childID == nil {
		all := append(append([]string{}, Vaccines...), VaccineOther)
		return apiresp.OK(c, http.StatusOK, all)
	}
	avail, err := h.svc.Available(c.Request().Context(), *childID)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, avail)
}

func (h *Handler) EligibleChildren(c echo.Context) error {
	items, err := h.svc.EligibleChildren(c.Request().Context())
	if err != nil {
		return apiresp.FromError(err)
	}
	if items == nil {
		items = []*resident.Resident{}
	}
	return apiresp.OK(c, http.StatusOK, items)
}

func (h *Handler) List(c echo.Context) error { return h.list(c, false) }

func (h *Handler) ListArchived(c echo.Context) error { return h.list(c, true) }

func (h *Handler) list(c echo.Context, archived bool) error {
	pg := pagination.FromContext(c)
	childID, err := apiresp.QueryUUID(c, "child_id")
	if err != nil {
		return err
	}
	f := ListFilter{
		Search:   pg.Pattern(),
		ChildID:  childID,
		Vaccine:  strings.TrimSpace(c.QueryParam("vaccine")),
		Archived: archived,
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apiresp.FromError(err)
	}
	if items == nil {
		items = []*Record{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
