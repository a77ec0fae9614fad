package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/1ndex13/logistic-app/core/logger"
	coremetrics "github.com/1ndex13/logistic-app/core/metrics"
	infralogger "github.com/1ndex13/logistic-app/infra/logger"
)

// InfluxSink writes allocation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAllocations writes allocation events as line protocol points.
func (s *InfluxSink) RecordAllocations(records []coremetrics.AllocationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("allocation_event").
			AddTag("event_id", r.EventID).
			AddTag("vehicle_id", r.VehicleID).
			AddTag("warehouse_id", r.WarehouseID).
			AddTag("applied", strconv.FormatBool(r.Applied)).
			AddTag("component", "allocation_coordinator").
			AddField("volume_m3", round3(r.Volume)).
			AddField("new_load_m3", round3(r.NewLoad)).
			AddField("utilization", round3(r.Utilization)).
			AddField("errors", r.Error).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordReleases writes release events as line protocol points.
func (s *InfluxSink) RecordReleases(records []coremetrics.ReleaseRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("release_event").
			AddTag("event_id", r.EventID).
			AddTag("vehicle_id", r.VehicleID).
			AddTag("warehouse_id", r.WarehouseID).
			AddTag("forced", strconv.FormatBool(r.Forced)).
			AddTag("component", "release_manager").
			AddField("volume_m3", round3(r.Volume)).
			AddField("new_load_m3", round3(r.NewLoad)).
			AddField("errors", r.Error).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
