package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/1ndex13/logistic-app/core/allocation"
)

// WriteJSON writes the allocation plan to w in JSON format.
func WriteJSON(w io.Writer, plan allocation.BulkPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteCSV writes the allocation plan to w in CSV format. Unallocated
// vehicles appear as rows with an empty warehouse column.
func WriteCSV(w io.Writer, plan allocation.BulkPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"vehicle_id", "warehouse_id", "volume_m3", "new_load_m3"}); err != nil {
		return err
	}
	for _, p := range plan.Plans {
		rec := []string{
			p.VehicleID,
			p.WarehouseID,
			strconv.FormatFloat(p.Volume, 'f', -1, 64),
			strconv.FormatFloat(p.NewLoad, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, id := range plan.Unallocated {
		if err := cw.Write([]string{id, "", "", ""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
