package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guileen/nativeplan/logger"
	"github.com/guileen/nativeplan/offload"
	"github.com/guileen/nativeplan/plan"
	"github.com/guileen/nativeplan/sql"
)

// PlanHandler exposes planning and offload validation over HTTP
type PlanHandler struct {
	planner *sql.Planner
	adapter *offload.Adapter
}

// NewPlanHandler creates a handler over the given planner and adapter
func NewPlanHandler(planner *sql.Planner, adapter *offload.Adapter) *PlanHandler {
	return &PlanHandler{planner: planner, adapter: adapter}
}

// RegisterRoutes mounts the plan endpoints on the router
func (h *PlanHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/plan", func(r chi.Router) {
		r.Post("/explain", h.Explain)
		r.Post("/validate", h.Validate)
	})
}

type PlanRequest struct {
	SQL string `json:"sql"`
}

// AttributeInfo is one output column of a plan, with its wire OID
type AttributeInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	OID  uint32 `json:"oid"`
}

type ExplainResponse struct {
	Original  string          `json:"original"`
	Adapted   string          `json:"adapted"`
	Rewritten bool            `json:"rewritten"`
	Schema    []AttributeInfo `json:"schema"`
}

type ValidateResponse struct {
	Offloadable  bool            `json:"offloadable"`
	Adapted      bool            `json:"adapted"`
	Reason       string          `json:"reason,omitempty"`
	NativeSchema []AttributeInfo `json:"native_schema,omitempty"`
}

// Explain plans a SELECT, applies the offload adaptation pass and returns
// both renderings
func (h *PlanHandler) Explain(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	root, err := h.planner.PlanSelect(r.Context(), req.SQL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	original := plan.Explain(root)
	originalSchema := root.Schema()

	adapted, err := h.adapter.ApplyToPlan(root)
	if err != nil {
		if errors.Is(err, offload.ErrResolution) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.ErrorContext(r.Context(), "adaptation pass failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rendered := plan.Explain(adapted)
	writeJSON(w, http.StatusOK, ExplainResponse{
		Original:  original,
		Adapted:   rendered,
		Rewritten: rendered != original,
		Schema:    attributeInfos(originalSchema),
	})
}

// Validate shows the trial-mode view of the query's aggregate: the shape it
// would take if adaptation were applied, without touching the plan
func (h *PlanHandler) Validate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	root, err := h.planner.PlanSelect(r.Context(), req.SQL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	agg := findAggregate(root)
	if agg == nil {
		writeJSON(w, http.StatusOK, ValidateResponse{
			Offloadable: false,
			Reason:      "query has no aggregate operator",
		})
		return
	}

	if h.adapter.Tags().IsExcluded(agg) {
		writeJSON(w, http.StatusOK, ValidateResponse{
			Offloadable: false,
			Reason:      "aggregate is excluded from offload",
		})
		return
	}

	evaluated, err := h.adapter.EvaluateForValidation(agg)
	if err != nil {
		if errors.Is(err, offload.ErrResolution) {
			writeJSON(w, http.StatusOK, ValidateResponse{
				Offloadable: false,
				Reason:      err.Error(),
			})
			return
		}
		logger.ErrorContext(r.Context(), "trial evaluation failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ValidateResponse{
		Offloadable:  true,
		Adapted:      evaluated != plan.Node(agg),
		NativeSchema: attributeInfos(evaluated.Schema()),
	})
}

func (h *PlanHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (PlanRequest, bool) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.SQL == "" {
		http.Error(w, "sql is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// findAggregate returns the first aggregate in the tree, top-down
func findAggregate(n plan.Node) *plan.Aggregate {
	if agg, ok := n.(*plan.Aggregate); ok {
		return agg
	}
	for _, child := range n.Children() {
		if agg := findAggregate(child); agg != nil {
			return agg
		}
	}
	return nil
}

func attributeInfos(attrs []plan.Attribute) []AttributeInfo {
	infos := make([]AttributeInfo, len(attrs))
	for i, a := range attrs {
		infos[i] = AttributeInfo{Name: a.Name, Type: string(a.Type), OID: a.Type.OID()}
	}
	return infos
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}
