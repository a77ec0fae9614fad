package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/1ndex13/logistic-app/auth"
	"github.com/1ndex13/logistic-app/core/logger"
	"github.com/1ndex13/logistic-app/core/model"
	"github.com/1ndex13/logistic-app/core/registry"
	infralogger "github.com/1ndex13/logistic-app/infra/logger"
)

// RESTConfig defines the connection parameters for the admin backend API
// that owns vehicle and warehouse persistence. OAuth2 client credentials take
// precedence over the static token when both are set.
type RESTConfig struct {
	BaseURL        string    `json:"base_url"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	AuthToken      string    `json:"auth_token"`
	OAuth          auth.Conf `json:"oauth"`
}

// RESTStore implements both registries against the admin backend's REST API.
type RESTStore struct {
	base   string
	token  string
	creds  *auth.ClientCred
	client *http.Client
	log    logger.Logger
}

// NewRESTStore creates a client for the given backend.
func NewRESTStore(cfg RESTConfig) *RESTStore {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &RESTStore{
		base:   cfg.BaseURL,
		token:  cfg.AuthToken,
		client: &http.Client{Timeout: timeout},
		log:    infralogger.New("rest-store"),
	}
	if cfg.OAuth.Enabled() {
		s.creds = auth.NewClientCred(cfg.OAuth)
	}
	return s
}

// ListVehicles implements registry.FleetRegistry.
func (s *RESTStore) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	var out []model.Vehicle
	if err := s.get(ctx, "/api/vehicles/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVehicle implements registry.FleetRegistry.
func (s *RESTStore) GetVehicle(ctx context.Context, id string) (model.Vehicle, error) {
	var out model.Vehicle
	if err := s.get(ctx, "/api/vehicles/"+id+"/", &out); err != nil {
		return model.Vehicle{}, err
	}
	return out, nil
}

// UpdateVehicle implements registry.FleetRegistry.
func (s *RESTStore) UpdateVehicle(ctx context.Context, id string, upd registry.VehicleUpdate) error {
	fields := map[string]any{}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.CurrentWarehouseID != nil {
		if *upd.CurrentWarehouseID == "" {
			fields["current_warehouse_id"] = nil
		} else {
			fields["current_warehouse_id"] = *upd.CurrentWarehouseID
		}
	}
	return s.patch(ctx, "/api/vehicles/"+id+"/", fields)
}

// ListWarehouses implements registry.WarehouseRegistry.
func (s *RESTStore) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	var out []model.Warehouse
	if err := s.get(ctx, "/api/warehouses/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWarehouse implements registry.WarehouseRegistry.
func (s *RESTStore) GetWarehouse(ctx context.Context, id string) (model.Warehouse, error) {
	var out model.Warehouse
	if err := s.get(ctx, "/api/warehouses/"+id+"/", &out); err != nil {
		return model.Warehouse{}, err
	}
	return out, nil
}

// UpdateWarehouse implements registry.WarehouseRegistry.
func (s *RESTStore) UpdateWarehouse(ctx context.Context, id string, upd registry.WarehouseUpdate) error {
	fields := map[string]any{}
	if upd.CurrentLoad != nil {
		fields["current_load"] = *upd.CurrentLoad
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}
	return s.patch(ctx, "/api/warehouses/"+id+"/", fields)
}

func (s *RESTStore) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *RESTStore) patch(ctx context.Context, path string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, nil)
}

func (s *RESTStore) do(req *http.Request, out any) error {
	switch {
	case s.creds != nil:
		if err := s.creds.SetAuthHeader(req); err != nil {
			return fmt.Errorf("authorize request: %w", err)
		}
	case s.token != "":
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			s.log.Warnf("close response body: %v", cErr)
		}
	}()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return registry.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("backend %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
