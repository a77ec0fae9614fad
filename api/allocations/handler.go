package allocations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/1ndex13/logistic-app/core/allocation"
	"github.com/1ndex13/logistic-app/core/fleetkpi"
	"github.com/1ndex13/logistic-app/core/registry"
)

// Handler exposes the allocation service over HTTP. The routes are thin
// adapters: every decision lives in the allocation package.
type Handler struct {
	svc        *allocation.Service
	fleet      registry.FleetRegistry
	warehouses registry.WarehouseRegistry
}

// NewHandler builds the HTTP handler set for the allocation endpoints.
func NewHandler(svc *allocation.Service, fleet registry.FleetRegistry, warehouses registry.WarehouseRegistry) *Handler {
	return &Handler{svc: svc, fleet: fleet, warehouses: warehouses}
}

// Register mounts the allocation routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/allocations", h.allocate)
	mux.HandleFunc("/api/allocations/auto", h.autoAllocate)
	mux.HandleFunc("/api/allocations/plan", h.plan)
	mux.HandleFunc("/api/vehicles/free", h.freeVehicle)
	mux.HandleFunc("/api/warehouses/free", h.freeWarehouse)
	mux.HandleFunc("/api/fleet/stats", h.stats)
}

type allocateRequest struct {
	VehicleID   string `json:"vehicle_id"`
	WarehouseID string `json:"warehouse_id"`
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VehicleID == "" || req.WarehouseID == "" {
		http.Error(w, "vehicle_id and warehouse_id are required", http.StatusUnprocessableEntity)
		return
	}
	res, err := h.svc.Allocate(r.Context(), req.VehicleID, req.WarehouseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type bulkResponse struct {
	Applied     []allocation.Plan `json:"applied"`
	Failed      []failedPlan      `json:"failed"`
	Unallocated []string          `json:"unallocated"`
}

type failedPlan struct {
	VehicleID   string `json:"vehicle_id"`
	WarehouseID string `json:"warehouse_id"`
	Error       string `json:"error"`
}

func (h *Handler) autoAllocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := h.svc.AutoAllocateAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBulkResponse(res))
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	plan, err := h.svc.PlanAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type freeVehicleRequest struct {
	VehicleID string `json:"vehicle_id"`
}

func (h *Handler) freeVehicle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req freeVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.svc.Free(r.Context(), req.VehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type freeWarehouseRequest struct {
	WarehouseID string `json:"warehouse_id"`
}

func (h *Handler) freeWarehouse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req freeWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	report, err := h.svc.FreeWarehouse(r.Context(), req.WarehouseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReleaseResponse(report))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vehicles, err := h.fleet.ListVehicles(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	warehouses, err := h.warehouses.ListWarehouses(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, fleetkpi.Compute(vehicles, warehouses))
}

func toBulkResponse(res allocation.BulkResult) bulkResponse {
	out := bulkResponse{Unallocated: res.Unallocated}
	for _, pr := range res.Results {
		if pr.Err == nil {
			out.Applied = append(out.Applied, pr.Plan)
			continue
		}
		out.Failed = append(out.Failed, failedPlan{
			VehicleID:   pr.Plan.VehicleID,
			WarehouseID: pr.Plan.WarehouseID,
			Error:       pr.Err.Error(),
		})
	}
	return out
}

type releaseResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	Freed       int             `json:"freed"`
	Failures    []failedRelease `json:"failures,omitempty"`
}

type failedRelease struct {
	VehicleID string `json:"vehicle_id"`
	Error     string `json:"error"`
}

func toReleaseResponse(report allocation.ReleaseReport) releaseResponse {
	out := releaseResponse{WarehouseID: report.WarehouseID, Freed: report.Freed}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, failedRelease{VehicleID: f.VehicleID, Error: f.Err.Error()})
	}
	return out
}

type errorResponse struct {
	Error       string  `json:"error"`
	WarehouseID string  `json:"warehouse_id,omitempty"`
	VehicleID   string  `json:"vehicle_id,omitempty"`
	Available   float64 `json:"available,omitempty"`
	Required    float64 `json:"required,omitempty"`
	Drift       float64 `json:"drift,omitempty"`
}

// writeError maps typed allocation errors to HTTP statuses with a structured
// body the UI can render verbatim.
func writeError(w http.ResponseWriter, err error) {
	var capErr *allocation.CapacityError
	var partialAlloc *allocation.PartialAllocationError
	var partialRel *allocation.PartialReleaseError
	switch {
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:       "insufficient capacity",
			WarehouseID: capErr.WarehouseID,
			VehicleID:   capErr.VehicleID,
			Available:   capErr.Available,
			Required:    capErr.Required,
		})
	case errors.As(err, &partialAlloc):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:       "partial allocation failure",
			WarehouseID: partialAlloc.WarehouseID,
			VehicleID:   partialAlloc.VehicleID,
			Drift:       partialAlloc.Drift,
		})
	case errors.As(err, &partialRel):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:       "partial release failure",
			WarehouseID: partialRel.WarehouseID,
			VehicleID:   partialRel.VehicleID,
			Drift:       partialRel.Drift,
		})
	case errors.Is(err, allocation.ErrVehicleNotFound),
		errors.Is(err, allocation.ErrWarehouseNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, allocation.ErrAlreadyAllocated),
		errors.Is(err, allocation.ErrVehicleNotAvailable),
		errors.Is(err, allocation.ErrInactiveWarehouse):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
