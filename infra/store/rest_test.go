package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1ndex13/logistic-app/auth"
	"github.com/1ndex13/logistic-app/core/model"
	"github.com/1ndex13/logistic-app/core/registry"
)

func TestRESTStore_GetVehicle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/vehicles/v1/", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(model.Vehicle{ID: "v1", Volume: 20, Status: model.StatusAvailable})
	}))
	defer srv.Close()

	s := NewRESTStore(RESTConfig{BaseURL: srv.URL, AuthToken: "s3cret"})
	v, err := s.GetVehicle(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, v.Volume)
}

func TestRESTStore_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewRESTStore(RESTConfig{BaseURL: srv.URL})
	_, err := s.GetWarehouse(context.Background(), "ghost")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRESTStore_UpdateVehiclePatch(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/vehicles/v1/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewRESTStore(RESTConfig{BaseURL: srv.URL})
	inUse := model.StatusInUse
	wid := "w1"
	err := s.UpdateVehicle(context.Background(), "v1", registry.VehicleUpdate{Status: &inUse, CurrentWarehouseID: &wid})
	require.NoError(t, err)
	assert.Equal(t, "IN_USE", got["status"])
	assert.Equal(t, "w1", got["current_warehouse_id"])
}

func TestRESTStore_ClearWarehouseSendsNull(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	s := NewRESTStore(RESTConfig{BaseURL: srv.URL})
	none := ""
	require.NoError(t, s.UpdateVehicle(context.Background(), "v1", registry.VehicleUpdate{CurrentWarehouseID: &none}))
	val, present := got["current_warehouse_id"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestRESTStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewRESTStore(RESTConfig{BaseURL: srv.URL})
	load := 5.0
	err := s.UpdateWarehouse(context.Background(), "w1", registry.WarehouseUpdate{CurrentLoad: &load})
	require.Error(t, err)
	assert.NotErrorIs(t, err, registry.ErrNotFound)
}

func TestRESTStore_OAuthTokenUsed(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"oauth-tok","token_type":"bearer","expires_in":3600}`))
	}))
	defer idp.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer oauth-tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(model.Vehicle{ID: "v1"})
	}))
	defer srv.Close()

	s := NewRESTStore(RESTConfig{
		BaseURL:   srv.URL,
		AuthToken: "static-token-ignored",
		OAuth:     auth.Conf{ClientID: "id", ClientSecret: "secret", AuthURL: idp.URL},
	})
	_, err := s.GetVehicle(context.Background(), "v1")
	require.NoError(t, err)
}

func TestRESTStore_ListWarehouses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/warehouses/", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]model.Warehouse{
			{ID: "w1", Capacity: 100, IsActive: true},
			{ID: "w2", Capacity: 200, IsActive: true},
		})
	}))
	defer srv.Close()

	s := NewRESTStore(RESTConfig{BaseURL: srv.URL})
	ws, err := s.ListWarehouses(context.Background())
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "w1", ws[0].ID)
}
