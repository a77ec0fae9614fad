package fleetkpi

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/1ndex13/logistic-app/core/model"
)

// Summary aggregates warehouse utilization across the fleet, the numbers the
// dashboard's summary cards show.
type Summary struct {
	Warehouses       int     `json:"warehouses"`
	ActiveWarehouses int     `json:"active_warehouses"`
	TotalCapacity    float64 `json:"total_capacity"`
	TotalLoad        float64 `json:"total_load"`
	MeanUtilization  float64 `json:"mean_utilization"`
	StdDev           float64 `json:"stddev_utilization"`
	MedianUtil       float64 `json:"median_utilization"`
	P90Util          float64 `json:"p90_utilization"`
	FullWarehouses   int     `json:"full_warehouses"`

	VehiclesTotal     int `json:"vehicles_total"`
	VehiclesAvailable int `json:"vehicles_available"`
	VehiclesInUse     int `json:"vehicles_in_use"`
}

// Compute builds a utilization summary from a registry snapshot.
func Compute(vehicles []model.Vehicle, warehouses []model.Warehouse) Summary {
	s := Summary{Warehouses: len(warehouses), VehiclesTotal: len(vehicles)}

	utils := make([]float64, 0, len(warehouses))
	for _, w := range warehouses {
		if w.IsActive {
			s.ActiveWarehouses++
		}
		s.TotalCapacity += w.Capacity
		s.TotalLoad += w.CurrentLoad
		u := w.Utilization()
		utils = append(utils, u)
		if w.FreeCapacity() <= 0 {
			s.FullWarehouses++
		}
	}
	for _, v := range vehicles {
		switch v.Status {
		case model.StatusAvailable:
			s.VehiclesAvailable++
		case model.StatusInUse:
			s.VehiclesInUse++
		}
	}

	if len(utils) > 0 {
		s.MeanUtilization = stat.Mean(utils, nil)
		if len(utils) > 1 {
			// StdDev over a single sample is NaN, which JSON cannot encode.
			s.StdDev = stat.StdDev(utils, nil)
		}
		sorted := append([]float64(nil), utils...)
		sort.Float64s(sorted)
		s.MedianUtil = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		s.P90Util = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}
	return s
}
