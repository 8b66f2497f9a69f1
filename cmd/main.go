package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/ckitchens/internal/adapter/file"
	"github.com/YelzhanWeb/ckitchens/internal/adapter/logger"
	"github.com/YelzhanWeb/ckitchens/internal/adapter/postgres"
	"github.com/YelzhanWeb/ckitchens/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/ckitchens/internal/app/cleanup"
	"github.com/YelzhanWeb/ckitchens/internal/app/courier"
	"github.com/YelzhanWeb/ckitchens/internal/app/intake"
	"github.com/YelzhanWeb/ckitchens/internal/app/journal"
	"github.com/YelzhanWeb/ckitchens/internal/app/kitchen"
	"github.com/YelzhanWeb/ckitchens/internal/app/order"
	"github.com/YelzhanWeb/ckitchens/internal/app/tracking"
	"github.com/YelzhanWeb/ckitchens/internal/config"
	"github.com/YelzhanWeb/ckitchens/internal/interfaces"
	"github.com/YelzhanWeb/ckitchens/internal/shelf"
	"github.com/YelzhanWeb/ckitchens/migrations"
	"golang.org/x/sync/errgroup"

	amqpAdapter "github.com/YelzhanWeb/ckitchens/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/ckitchens/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "simulator", "Mode: simulator, kitchen, order-publisher, notification-subscriber")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	port := flag.Int("port", 0, "HTTP port, overrides http.port")
	ordersFile := flag.String("orders", "", "Order definitions file, overrides simulation.orders_file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	if *ordersFile != "" {
		cfg.Simulation.OrdersFile = *ordersFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lgr := logger.NewWithLevel(*mode, logger.ParseLevel(cfg.Log.Level), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "simulator":
		err = runSimulator(ctx, cfg, lgr)
	case "kitchen":
		err = runKitchen(ctx, cfg, lgr)
	case "order-publisher":
		err = runOrderPublisher(ctx, cfg, lgr)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("service_failed", "Service stopped with error", "shutdown", nil, err)
		os.Exit(1)
	}
	lgr.Info("service_stopped", "Service stopped", "shutdown", nil)
}

// infra holds the optional ledger and broker connections. Unset fields mean
// the corresponding sink is disabled.
type infra struct {
	db        postgres.DB
	mq        rabbitmq.Connection
	ledger    interfaces.EventRepository
	events    interfaces.EventPublisher
	publisher rabbitmq.Publisher
}

func (i *infra) close() {
	if i.mq != nil {
		i.mq.Close()
	}
	if i.db != nil {
		i.db.Close()
	}
}

func connect(ctx context.Context, cfg *config.Config, lgr logger.Logger, needBroker bool) (*infra, error) {
	in := &infra{}

	if cfg.Database.Enabled {
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db, migrations.FS); err != nil {
			db.Close()
			return nil, err
		}
		in.db = db
		in.ledger = postgres.NewEventRepository(db)

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})
	}

	if cfg.RabbitMQ.Enabled || needBroker {
		mq, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			in.close()
			return nil, err
		}
		in.mq = mq
		in.publisher = rabbitmq.NewPublisher(mq)
		in.events = in.publisher

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})
	}

	return in, nil
}

// pipeline is the shelf core plus the services driving it
type pipeline struct {
	manager  *shelf.Manager
	journal  *journal.Service
	couriers *courier.Service
	kitchen  *kitchen.Service
	cleanup  *cleanup.Service
	tracking *tracking.Service
}

func newPipeline(cfg *config.Config, in *infra, lgr logger.Logger) *pipeline {
	sim := cfg.Simulation
	manager := shelf.NewManager(shelf.Capacities{
		Hot:      cfg.Shelves.Hot,
		Cold:     cfg.Shelves.Cold,
		Frozen:   cfg.Shelves.Frozen,
		Overflow: cfg.Shelves.Overflow,
	}, shelf.WithSeed(sim.Seed), shelf.WithInvariantChecks(cfg.Shelves.CheckInvariants))

	j := journal.NewService(in.ledger, in.events, lgr)
	couriers := courier.NewService(manager, j, lgr, sim.Couriers, sim.PickupMin, sim.PickupMax, sim.Seed)

	return &pipeline{
		manager:  manager,
		journal:  j,
		couriers: couriers,
		kitchen:  kitchen.NewService(manager, j, couriers, lgr, sim.Chefs, sim.CookTime),
		cleanup:  cleanup.NewService(manager, j, lgr, sim.CleanupInitialDelay, sim.CleanupInterval),
		tracking: tracking.NewService(manager, in.ledger, j, lgr),
	}
}

func (p *pipeline) server(cfg *config.Config, lgr logger.Logger) *http.Server {
	router := httpAdapter.NewRouter(
		httpAdapter.NewTrackingHandler(p.tracking, lgr),
		httpAdapter.NewOrderHandler(p.kitchen, lgr),
		lgr,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func runSimulator(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	orders, err := file.LoadOrders(cfg.Simulation.OrdersFile)
	if err != nil {
		return err
	}

	in, err := connect(ctx, cfg, lgr, false)
	if err != nil {
		return err
	}
	defer in.close()

	p := newPipeline(cfg, in, lgr)
	intakeService := intake.NewService(file.NewOrderSource(orders), p.kitchen, lgr, cfg.Simulation.IngestInterval())

	lgr.Info("service_started", fmt.Sprintf("Simulator started with %d orders", len(orders)), "startup", map[string]interface{}{
		"orders":      len(orders),
		"ingest_rate": cfg.Simulation.IngestRate,
		"port":        cfg.HTTP.Port,
	})

	g, gctx := errgroup.WithContext(ctx)
	runCtx, finish := context.WithCancel(gctx)
	defer finish()

	g.Go(func() error { return intakeService.Run(runCtx) })
	g.Go(func() error { return p.cleanup.Run(runCtx) })
	g.Go(func() error { return serve(runCtx, p.server(cfg, lgr), lgr) })
	g.Go(func() error {
		err := p.kitchen.Run(runCtx)
		p.couriers.Wait()
		if runCtx.Err() == nil {
			logSummary(lgr, p)
		}
		finish()
		return err
	})

	return g.Wait()
}

func runKitchen(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	in, err := connect(ctx, cfg, lgr, true)
	if err != nil {
		return err
	}
	defer in.close()

	p := newPipeline(cfg, in, lgr)
	consumer := rabbitmq.NewConsumer(in.mq, cfg.Simulation.Chefs, lgr)
	handler := amqpAdapter.NewOrderHandler(p.kitchen, lgr)

	lgr.Info("service_started", "Kitchen started", "startup", map[string]interface{}{
		"chefs":    cfg.Simulation.Chefs,
		"couriers": cfg.Simulation.Couriers,
		"port":     cfg.HTTP.Port,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.kitchen.Close()
		return consumer.ConsumeOrders(gctx, handler.HandleOrder)
	})
	g.Go(func() error {
		err := p.kitchen.Run(gctx)
		p.couriers.Wait()
		return err
	})
	g.Go(func() error { return p.cleanup.Run(gctx) })
	g.Go(func() error { return serve(gctx, p.server(cfg, lgr), lgr) })

	return g.Wait()
}

func runOrderPublisher(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	orders, err := file.LoadOrders(cfg.Simulation.OrdersFile)
	if err != nil {
		return err
	}

	in, err := connect(ctx, cfg, lgr, true)
	if err != nil {
		return err
	}
	defer in.close()

	svc := order.NewService(file.NewOrderSource(orders), in.publisher, lgr, cfg.Simulation.IngestInterval())
	n, err := svc.PublishAll(ctx)
	lgr.Info("orders_published", fmt.Sprintf("Published %d of %d orders", n, len(orders)), "shutdown", map[string]interface{}{
		"published": n,
		"total":     len(orders),
	})
	return err
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	in, err := connect(ctx, cfg, lgr, true)
	if err != nil {
		return err
	}
	defer in.close()

	consumer := rabbitmq.NewConsumer(in.mq, 1, lgr)
	handler := amqpAdapter.NewNotificationHandler(lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)
	return consumer.ConsumeEvents(ctx, handler.HandleEvent)
}

// serve runs the HTTP server until ctx is cancelled, then drains it
func serve(ctx context.Context, server *http.Server, lgr logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down HTTP server", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
	}
	return nil
}

func logSummary(lgr logger.Logger, p *pipeline) {
	details := make(map[string]interface{})
	for action, n := range p.journal.Counts() {
		details[string(action)] = n
	}
	lgr.Info("simulation_completed", "All orders cooked and picked up", "shutdown", details)

	if err := p.manager.Validate(); err != nil {
		lgr.Error("invariant_violation", "Shelf state is inconsistent", "shutdown", nil, err)
	}
}
