package handlers

import (
	"net/http"

	"github.com/abiolaogu/voxguard-console/internal/config"
	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
)

// ToolsHandler serves the configured deep links into the operator tool
// suite (metrics dashboards, capture consoles).
type ToolsHandler struct {
	links config.ToolLinks
}

// NewToolsHandler creates a new ToolsHandler
func NewToolsHandler(links config.ToolLinks) *ToolsHandler {
	return &ToolsHandler{links: links}
}

// List returns the configured tool links.
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.links)
}
