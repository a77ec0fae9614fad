package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/1ndex13/logistic-app/api/allocations"
	"github.com/1ndex13/logistic-app/config"
	"github.com/1ndex13/logistic-app/core/allocation"
	coremetrics "github.com/1ndex13/logistic-app/core/metrics"
	coremonitoring "github.com/1ndex13/logistic-app/core/monitoring"
	"github.com/1ndex13/logistic-app/core/notify"
	"github.com/1ndex13/logistic-app/core/registry"
	"github.com/1ndex13/logistic-app/infra/logger"
	"github.com/1ndex13/logistic-app/infra/metrics"
	"github.com/1ndex13/logistic-app/infra/monitoring"
	infranotify "github.com/1ndex13/logistic-app/infra/notify"
	"github.com/1ndex13/logistic-app/infra/store"
	"github.com/1ndex13/logistic-app/internal/eventbus"
)

// Service wires the allocation core to its registries, sinks and listeners.
type Service struct {
	Allocator  *allocation.Service
	Fleet      registry.FleetRegistry
	Warehouses registry.WarehouseRegistry

	bus      eventbus.EventBus
	sink     coremetrics.MetricsSink
	notifier *infranotify.MQTTNotifier
	log      logger.Logger
	httpAddr string
	promAddr string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	logg := logger.New("service")

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremonitoring.Init(monitor)

	fleet, warehouses, err := buildRegistries(cfg.Registry)
	if err != nil {
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	var mqttNotifier *infranotify.MQTTNotifier
	if cfg.Notifier.Enabled {
		mqttNotifier, err = infranotify.NewMQTTNotifier(cfg.Notifier)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = mqttNotifier
	}

	bus := eventbus.New()
	svc, err := allocation.NewService(cfg.Allocation, fleet, warehouses, logg, sink, bus, notifier)
	if err != nil {
		return nil, fmt.Errorf("allocation service: %w", err)
	}

	return &Service{
		Allocator:  svc,
		Fleet:      fleet,
		Warehouses: warehouses,
		bus:        bus,
		sink:       sink,
		notifier:   mqttNotifier,
		log:        logg,
		httpAddr:   cfg.HTTP.Addr,
		promAddr:   cfg.Metrics.PrometheusAddr,
	}, nil
}

func buildRegistries(cfg config.RegistryConfig) (registry.FleetRegistry, registry.WarehouseRegistry, error) {
	switch cfg.Backend {
	case "rest":
		s := store.NewRESTStore(cfg.REST)
		return s, s, nil
	default:
		if cfg.SeedPath != "" {
			s, err := store.LoadSeed(cfg.SeedPath)
			if err != nil {
				return nil, nil, err
			}
			return s, s, nil
		}
		s := store.NewMemoryStore()
		return s, s, nil
	}
}

// Run starts the HTTP listeners and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	allocations.NewHandler(s.Allocator, s.Fleet, s.Warehouses).Register(mux)
	srv := &http.Server{Addr: s.httpAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.httpAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	coremonitoring.Flush(2 * time.Second)
	return nil
}
