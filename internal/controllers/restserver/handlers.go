package restserver

import (
	"net/http"
	"sort"

	"github.com/chrissnell/mesonet-exporter/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// GetHealth reports the last run's status. It answers 503 until a run has
// completed and after a failed run.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.controller.state.Load()
	if !ok {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "no run has completed yet")
		return
	}

	status := http.StatusOK
	if !snap.Status.OK {
		status = http.StatusServiceUnavailable
	}
	h.formatter.WriteResponse(w, req, status, snap.Status)
}

// ListMetrics returns the names of the documents from the last run
func (h *Handlers) ListMetrics(w http.ResponseWriter, req *http.Request) {
	snap, _ := h.controller.state.Load()

	names := make([]string, 0, len(snap.Documents))
	for name := range snap.Documents {
		names = append(names, name)
	}
	sort.Strings(names)

	h.formatter.WriteResponse(w, req, http.StatusOK, names)
}

// GetMetric returns one document from the last run
func (h *Handlers) GetMetric(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	snap, _ := h.controller.state.Load()
	doc, ok := snap.Documents[name]
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, "unknown metric: "+name)
		return
	}

	if err := h.formatter.WriteResponse(w, req, http.StatusOK, doc); err != nil {
		h.controller.logger.Errorf("error writing %s response: %v", name, err)
	}
}
