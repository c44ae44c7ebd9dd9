package registrynode

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/api/handlers"
	apiserver "github.com/polystake/noderegistry/api/server"
	global_config "github.com/polystake/noderegistry/cli/config"
	"github.com/polystake/noderegistry/logging"
	"github.com/polystake/noderegistry/logging/fields"
	"github.com/polystake/noderegistry/migrations"
	"github.com/polystake/noderegistry/monitoring/metrics"
	"github.com/polystake/noderegistry/node"
	"github.com/polystake/noderegistry/nodeprobe"
	"github.com/polystake/noderegistry/observability"
	"github.com/polystake/noderegistry/registry"
	registrystorage "github.com/polystake/noderegistry/registry/storage"
	"github.com/polystake/noderegistry/staking"
	"github.com/polystake/noderegistry/storage/basedb"
	"github.com/polystake/noderegistry/storage/kv"
	"github.com/polystake/noderegistry/utils/commons"
)

const gatewayNodeName = "staking gateway"

type config struct {
	global_config.GlobalConfig `yaml:"global"`
	DBOptions                  basedb.Options  `yaml:"db"`
	StakingGateway             staking.Options `yaml:"stakingGateway"`

	RegistryAPIPort int  `yaml:"RegistryAPIPort" env:"REGISTRY_API_PORT" env-default:"16000" env-description:"Port to listen on for the registry API."`
	MetricsAPIPort  int  `yaml:"MetricsAPIPort" env:"METRICS_API_PORT" env-description:"Port to listen on for the metrics API."`
	EnableProfile   bool `yaml:"EnableProfile" env:"ENABLE_PROFILE" env-description:"flag that indicates whether go profiling tools are enabled"`
}

var cfg config

var globalArgs global_config.Args

// StartNodeCmd starts a registry node with the configured storage engine,
// staking gateway client and API listeners.
var StartNodeCmd = &cobra.Command{
	Use:   "start-node",
	Short: "Starts an instance of the registry node",
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := setupGlobal(cmd)
		if err != nil {
			log.Fatal("could not create logger: ", err)
		}

		defer logging.CapturePanic(logger)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		shutdownObservability, err := observability.Initialize(
			cmd.Parent().Short,
			cmd.Parent().Version,
			observability.WithMetrics(),
		)
		if err != nil {
			logger.Fatal("could not initialize observability", zap.Error(err))
		}
		defer func() {
			if err := shutdownObservability(context.Background()); err != nil {
				logger.Error("could not shut down observability", zap.Error(err))
			}
		}()

		cfg.DBOptions.Ctx = ctx
		db, err := setupDB(logger)
		if err != nil {
			logger.Fatal("could not setup db", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("could not close db", zap.Error(err))
			}
		}()

		gateway := staking.NewGatewayClient(
			cfg.StakingGateway.Address,
			staking.WithLogger(logger.Named(logging.NameStakingGateway)),
			staking.WithRequestTimeout(cfg.StakingGateway.RequestTimeout),
		)

		reg, err := registry.New(
			registrystorage.NewRegistryStorage(logger, db),
			gateway,
			gateway,
			registry.WithLogger(logger),
		)
		if err != nil {
			logger.Fatal("could not create registry", zap.Error(err))
		}

		nodeProber := nodeprobe.NewProber(
			logger.Named(logging.NameProber),
			nil,
			map[string]nodeprobe.Node{gatewayNodeName: gateway},
		)
		nodeProber.Start(ctx)
		nodeProber.Wait()
		nodeProber.SetUnhealthyHandler(func() {
			logger.Fatal("staking gateway is down. Ensure the gateway is ready to resume.")
		})

		registryNode := node.New(node.Options{
			Logger:   logger,
			Registry: reg,
			Prober:   nodeProber,
		})

		apiServer := apiserver.New(
			logger,
			fmt.Sprintf(":%d", cfg.RegistryAPIPort),
			&handlers.Node{
				Prober:          nodeProber,
				GatewayNodeName: gatewayNodeName,
			},
			&handlers.Operators{Registry: reg},
			&handlers.Registry{Registry: reg},
		)
		go func() {
			err := apiServer.Run()
			if err != nil {
				logger.Fatal("failed to start API server", zap.Error(err))
			}
		}()

		if cfg.MetricsAPIPort > 0 {
			go startMetricsHandler(ctx, logger, db, registryNode, cfg.MetricsAPIPort, cfg.EnableProfile)
		}

		if err := registryNode.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("failed to run registry node", zap.Error(err))
		}
		logger.Info("registry node stopped")
	},
}

func init() {
	global_config.ProcessArgs(&cfg, &globalArgs, StartNodeCmd)
}

func setupGlobal(cmd *cobra.Command) (*zap.Logger, error) {
	commons.SetBuildData(cmd.Parent().Short, cmd.Parent().Version)
	log.Printf("starting %s", commons.GetBuildData())

	if globalArgs.ConfigPath != "" {
		if err := cleanenv.ReadConfig(globalArgs.ConfigPath, &cfg); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	if err := logging.SetGlobalLogger(cfg.LogLevel, cfg.LogLevelFormat, cfg.LogFormat, cfg.LogFilePath); err != nil {
		return nil, fmt.Errorf("logging.SetGlobalLogger: %w", err)
	}

	return zap.L(), nil
}

func setupDB(logger *zap.Logger) (basedb.Database, error) {
	db, err := kv.New(logger, cfg.DBOptions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	reopenDb := func() error {
		if err := db.Close(); err != nil {
			return errors.Wrap(err, "failed to close db")
		}
		db, err = kv.New(logger, cfg.DBOptions)
		return errors.Wrap(err, "failed to reopen db")
	}

	applied, err := migrations.Run(cfg.DBOptions.Ctx, logger.Named(logging.NameMigrations), migrations.Options{Db: db})
	if err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}
	if applied == 0 {
		return db, nil
	}

	// If migrations were applied, we run a full garbage collection cycle
	// to reclaim any space that may have been freed up.
	// Close & reopen the database to trigger any unknown internal
	// startup/shutdown procedures that the storage engine may have.
	start := time.Now()
	if err := reopenDb(); err != nil {
		return nil, err
	}

	if gc, ok := db.(basedb.GarbageCollector); ok {
		// Run a long garbage collection cycle with a timeout.
		gcCtx, cancel := context.WithTimeout(context.Background(), 6*time.Minute)
		defer cancel()
		if err := gc.FullGC(gcCtx); err != nil {
			return nil, errors.Wrap(err, "failed to collect garbage")
		}
	}

	// Close & reopen again.
	if err := reopenDb(); err != nil {
		return nil, err
	}
	logger.Info("post-migrations garbage collection completed", fields.Duration(start))

	return db, nil
}

func startMetricsHandler(ctx context.Context, logger *zap.Logger, db basedb.Database, healthChecker metrics.HealthChecker, port int, enableProf bool) {
	logger = logger.Named(logging.NameMetricsHandler)
	// init and start HTTP handler
	metricsHandler := metrics.NewHandler(ctx, db, enableProf, healthChecker)
	addr := fmt.Sprintf(":%d", port)
	if err := metricsHandler.Start(logger, http.NewServeMux(), addr); err != nil {
		logger.Panic("failed to serve metrics", zap.Error(err))
	}
}
