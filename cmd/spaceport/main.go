package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/spacefns/spaceport"
	"github.com/spacefns/spaceport/internal/config"
	"github.com/spacefns/spaceport/internal/domain"
	"github.com/spacefns/spaceport/internal/gate"
	"github.com/spacefns/spaceport/internal/infra/database"
	"github.com/spacefns/spaceport/internal/infra/repository"
	"github.com/spacefns/spaceport/internal/present/rest"
	authmiddleware "github.com/spacefns/spaceport/internal/present/rest/middleware"
	"github.com/spacefns/spaceport/internal/service"
	"github.com/spacefns/spaceport/internal/usecase"
)

const version = "1.0"

func main() {
	configPath := os.Getenv("SPACEPORT_CONFIG")
	if configPath == "" {
		configPath = "/etc/spaceport/config.yaml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	if !spaceport.IsAddress(conf.NodeInfo.Admin) {
		panic("nodeInfo.admin must be a principal address")
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint, conf.NodeInfo.FQDN, version)
		if err != nil {
			panic(err)
		}
		defer cleanup()
	}

	var store usecase.Store
	if conf.Server.PostgresDsn != "" {
		db, err := database.NewPostgres(conf.Server.PostgresDsn)
		if err != nil {
			panic("failed to connect database")
		}
		err = database.MigratePostgres(db)
		if err != nil {
			panic("failed to migrate database")
		}
		var mc *memcache.Client
		if conf.Server.MemcachedAddr != "" {
			mc = database.NewMemcached(conf.Server.MemcachedAddr)
		}
		store = repository.NewGormStore(db, mc)
	} else {
		slog.Info(
			"postgresDsn is empty, falling back to the in-memory store",
			slog.String("module", "main"),
		)
		store = repository.NewMemoryStore()
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	signal := service.NewSignalService(rdb)

	spaceGate := gate.New(conf.NodeInfo.Admin)
	momentGate := gate.New(conf.NodeInfo.Admin)

	spaces := usecase.NewSpaceUsecase(store, spaceGate)
	moments := usecase.NewMomentUsecase(store, momentGate)
	treasury := usecase.NewTreasuryUsecase(store, conf.NodeInfo.Admin)
	account := usecase.NewAccountUsecase(
		store, spaces, moments, treasury,
		spaceGate, momentGate, signal,
		conf.NodeInfo.ServiceAddr, conf.NodeInfo.Admin,
	)

	// both registries accept calls from the orchestrator only
	adminCtx := domain.WithRequester(context.Background(), conf.NodeInfo.Admin)
	if err := spaceGate.SetCaller(adminCtx, conf.NodeInfo.ServiceAddr); err != nil {
		panic(err)
	}
	if err := momentGate.SetCaller(adminCtx, conf.NodeInfo.ServiceAddr); err != nil {
		panic(err)
	}

	if err := seedSettings(context.Background(), store, conf.Registry); err != nil {
		panic(err)
	}

	dcfg := conf.Domain()
	auth := service.NewAuthService(dcfg)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("spaceport"))
	}
	e.Use(authmiddleware.NewAuthMiddleware(auth, dcfg).IdentifyIdentity)

	handler := rest.NewHandler(dcfg, account, spaces, moments, treasury, signal)
	handler.RegisterRoutes(e)

	listen := conf.Server.Listen
	if listen == "" {
		listen = ":8000"
	}
	e.Logger.Fatal(e.Start(listen))
}

// seedSettings applies the configured registry defaults for keys that have
// never been written. Values changed by the administrator at runtime survive
// restarts untouched.
func seedSettings(ctx context.Context, store usecase.Store, registry config.Registry) error {
	return store.Atomic(ctx, func(ctx context.Context) error {
		settings := store.Settings()

		current, err := settings.GetString(ctx, domain.SettingMintFee)
		if err != nil {
			return err
		}
		if current == "" {
			if err := settings.SetUint(ctx, domain.SettingMintFee, registry.MintFee); err != nil {
				return err
			}
		}

		current, err = settings.GetString(ctx, domain.SettingBeneficiary)
		if err != nil {
			return err
		}
		if current == "" && registry.Beneficiary != "" {
			if err := settings.SetString(ctx, domain.SettingBeneficiary, registry.Beneficiary); err != nil {
				return err
			}
		}

		current, err = settings.GetString(ctx, domain.SettingSubSpaceLimit)
		if err != nil {
			return err
		}
		if current == "" {
			if err := settings.SetUint(ctx, domain.SettingSubSpaceLimit, registry.SubSpaceLimit); err != nil {
				return err
			}
		}

		return nil
	})
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error(
				"failed to shutdown tracer provider",
				slog.String("error", err.Error()),
				slog.String("module", "main"),
			)
		}
	}
	return cleanup, nil
}
