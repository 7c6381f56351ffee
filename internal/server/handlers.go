// Package server exposes a Backend over HTTP in the shape i18next-http-backend
// clients expect.
package server

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ZaguanLabs/i18nbackend"
)

// multiSeparator joins several languages or namespaces in one request.
const multiSeparator = "+"

// Backend is the subset of *i18nbackend.Backend the handlers need.
type Backend interface {
	Read(ctx context.Context, language, namespace string) (i18nbackend.Resource, error)
	ReadMulti(ctx context.Context, languages, namespaces []string) (map[string]map[string]i18nbackend.Resource, error)
	Create(languages []string, namespace, key, fallbackValue string)
}

// Handler holds the HTTP handlers
type Handler struct {
	backend Backend
}

// NewHandler creates a new handler serving backend
func NewHandler(backend Backend) *Handler {
	return &Handler{
		backend: backend,
	}
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Locales handles GET /locales/:lng/:ns
//
// A trailing ".json" on the namespace is ignored. When either segment joins
// several values with "+", the response is indexed by language, then namespace.
func (h *Handler) Locales(c echo.Context) error {
	lng := c.Param("lng")
	ns := strings.TrimSuffix(c.Param("ns"), ".json")
	if lng == "" || ns == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "language and namespace are required")
	}

	ctx := c.Request().Context()
	if !strings.Contains(lng, multiSeparator) && !strings.Contains(ns, multiSeparator) {
		res, err := h.backend.Read(ctx, lng, ns)
		if err != nil {
			return readFailed(err)
		}
		return c.JSON(http.StatusOK, res)
	}

	out, err := h.backend.ReadMulti(ctx, strings.Split(lng, multiSeparator), strings.Split(ns, multiSeparator))
	if err != nil {
		return readFailed(err)
	}
	return c.JSON(http.StatusOK, out)
}

// AddMissing handles POST /locales/add/:lng/:ns
//
// The body maps each missing key to its fallback value.
func (h *Handler) AddMissing(c echo.Context) error {
	lng := c.Param("lng")
	ns := strings.TrimSuffix(c.Param("ns"), ".json")

	// BindBody keeps the path params out of the map.
	var body map[string]string
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	languages := strings.Split(lng, multiSeparator)
	for _, key := range keys {
		h.backend.Create(languages, ns, key, body[key])
	}

	return c.JSON(http.StatusAccepted, map[string]int{"queued": len(body) * len(languages)})
}

func readFailed(err error) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "read cancelled").SetInternal(err)
}
