package reporting

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barangay/records/internal/platform/apiresp"
	"github.com/barangay/records/internal/platform/auth"
)

// Output formats accepted by the format query parameter.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler serves the report catalog, the dashboard and rendered reports.
type Handler struct {
	src     Source
	catalog *Catalog
	header  []string
	now     func() time.Time
}

// NewHandler creates a report handler. header is printed at the top of every
// rendered document.
func NewHandler(src Source, catalog *Catalog, header []string) *Handler {
	return &Handler{src: src, catalog: catalog, header: header, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/age-distribution", h.AgeDistribution)
	g.GET("/:id", h.Run)
}

// List returns the predefined report definitions.
func (h *Handler) List(c echo.Context) error {
	return apiresp.OK(c, http.StatusOK, h.catalog.All())
}

func (h *Handler) Dashboard(c echo.Context) error {
	results, err := Dashboard(c.Request().Context(), h.src)
	if err != nil {
		return apiresp.FromError(err)
	}
	return apiresp.OK(c, http.StatusOK, results)
}

func (h *Handler) AgeDistribution(c echo.Context) error {
	format, err := parseFormat(c.QueryParam("format"))
	if err != nil {
		return err
	}
	people, err := h.src.People(c.Request().Context())
	if err != nil {
		return apiresp.FromError(err)
	}
	doc := NewAgeDistribution(people, h.now()).Document(h.header)
	return h.write(c, doc, format)
}

// Run renders a predefined report. Query parameters named in the
// definition are bound as SQL arguments.
func (h *Handler) Run(c echo.Context) error {
	def, ok := h.catalog.Find(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("report %q not found", c.Param("id")))
	}
	format, err := parseFormat(c.QueryParam("format"))
	if err != nil {
		return err
	}

	args := make([]interface{}, len(def.Parameters))
	var filters []string
	for i, p := range def.Parameters {
		if v := strings.TrimSpace(c.QueryParam(p)); v != "" {
			args[i] = v
			filters = append(filters, fmt.Sprintf("%s: %s", strings.ToUpper(p[:1])+p[1:], v))
		}
	}

	rows, err := h.src.Rows(c.Request().Context(), def.SQL, args...)
	if err != nil {
		return apiresp.FromError(err)
	}

	doc := &Document{
		Title:       def.Title,
		Header:      h.header,
		Subtitle:    strings.Join(filters, ", "),
		GeneratedAt: h.now(),
		Tables: []Table{{
			Columns: def.Columns,
			Rows:    rows,
		}},
	}
	if doc.Subtitle == "" {
		doc.Subtitle = fmt.Sprintf("Total: %d", len(rows))
	} else {
		doc.Subtitle += fmt.Sprintf(" | Total: %d", len(rows))
	}
	return h.write(c, doc, format)
}

func (h *Handler) write(c echo.Context, doc *Document, format string) error {
	if format == FormatJSON {
		return apiresp.OK(c, http.StatusOK, doc)
	}

	var buf bytes.Buffer
	contentType := contentTypePDF
	switch format {
	case FormatXLSX:
		contentType = contentTypeXLSX
		if err := RenderXLSX(&buf, doc); err != nil {
			return apiresp.FromError(err)
		}
	default:
		if err := RenderPDF(&buf, doc); err != nil {
			return apiresp.FromError(err)
		}
	}

	name := FileName(doc.Title, doc.GeneratedAt, format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func parseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported format %q: use pdf, xlsx or json", s))
}
