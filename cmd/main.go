package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog_service/config"
	"catalog_service/internal/delivery"
	grpcdelivery "catalog_service/internal/delivery/grpc"
	"catalog_service/internal/domain"
	"catalog_service/internal/repository"
	"catalog_service/internal/usecase"
	"catalog_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

// HTML content for the test page
const htmlTestPageContent = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Catalog Service API Test Page</title>
    <style>
        body { font-family: Helvetica, Arial, sans-serif; line-height: 1.6; padding: 20px; background-color: #f9f9f9; color: #333; }
        h1, h2 { border-bottom: 1px solid #ccc; padding-bottom: 5px; }
        ul { list-style: none; padding-left: 0; }
        li { margin-bottom: 15px; background-color: #fff; padding: 10px; border: 1px solid #eee; border-radius: 4px; }
        code { background-color: #e8e8e8; padding: 3px 6px; border-radius: 3px; font-family: Consolas, Monaco, monospace; }
        .method { font-weight: bold; display: inline-block; width: 60px; }
        .method-post { color: #49cc90; }
        .method-get { color: #61affe; }
    </style>
</head>
<body>
    <h1>Catalog Service API Endpoints</h1>

    <h2>Products</h2>
    <ul>
        <li><span class="method method-post">POST</span> <code>/products</code> - Add or replace a product. JSON body: <code>{"name": "string", "price": "decimal", "quantity": int}</code></li>
        <li><span class="method method-get">GET</span> <code><a href="/products">/products</a></code> - List products in display order.</li>
        <li><span class="method method-get">GET</span> <code>/products/{name}</code> - Retrieve one product by name.</li>
        <li><span class="method method-post">POST</span> <code>/products/{name}/purchase</code> - Take one unit out of stock.</li>
        <li><span class="method method-post">POST</span> <code>/discount</code> - Discount every price. JSON body: <code>{"percent": 0-100}</code></li>
    </ul>

    <h2>Reports</h2>
    <ul>
        <li><span class="method method-get">GET</span> <code><a href="/reports/total-value">/reports/total-value</a></code> - Sum of price times quantity.</li>
        <li><span class="method method-get">GET</span> <code><a href="/reports/out-of-stock">/reports/out-of-stock</a></code> - Products with zero quantity.</li>
    </ul>

    <h2>Persistence</h2>
    <ul>
        <li><span class="method method-post">POST</span> <code>/catalog/export</code> - Write the catalog as CSV. Optional body: <code>{"path": "file name in CATALOG_DIR"}</code></li>
        <li><span class="method method-post">POST</span> <code>/catalog/import</code> - Replace the catalog from CSV. Optional body: <code>{"path": "file name in CATALOG_DIR"}</code></li>
        <li><span class="method method-post">POST</span> <code>/catalog/snapshot</code> - Store the catalog in the configured backend.</li>
        <li><span class="method method-post">POST</span> <code>/catalog/restore</code> - Replace the catalog from the configured backend.</li>
    </ul>

    <h2>Operations</h2>
    <ul>
        <li><span class="method method-get">GET</span> <code><a href="/health">/health</a></code></li>
        <li><span class="method method-get">GET</span> <code><a href="/metrics">/metrics</a></code></li>
    </ul>
</body>
</html>
`

func serveTestPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(htmlTestPageContent))
}

func main() {
	//  Configuration and Logging Setup
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting Catalog Service...")

	// --- Snapshot backend ---
	snapshots, closeBackend := openSnapshotBackend(cfg, logger)
	defer closeBackend()

	// --- Dependency Injection ---
	fileRepo := repository.NewCSVCatalogRepository(logger)
	catalogUseCase := usecase.NewCatalogUseCase(fileRepo, snapshots, cfg.CatalogDir, cfg.CatalogPath(), logger)
	logger.Info("Use cases initialized.")

	catalogHandler := delivery.NewCatalogHandler(catalogUseCase, logger)
	grpcHandler := grpcdelivery.NewCatalogHandler(catalogUseCase, logger)
	logger.Info("Handlers initialized.")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := delivery.NewServerMetrics(registry)

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(delivery.RequestID())
	router.Use(delivery.RequestLogger(logger))
	router.Use(metrics.Middleware())

	//Route Registration
	router.GET("/", serveTestPage)
	router.GET("/health", delivery.HealthCheck)
	metrics.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)
	logger.Info("API Routes registered.")

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcdelivery.LoggingInterceptor(logger)))
	grpcdelivery.RegisterCatalogServiceServer(grpcServer, grpcHandler)

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on gRPC port %s: %v", cfg.GrpcPort, err)
	}

	//  Start Servers
	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Errorf("gRPC server error: %v", err)
		}
	}()

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Infof("Received %s, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}

// openSnapshotBackend returns a nil repository when snapshots are disabled.
// The returned func releases the backend connection.
func openSnapshotBackend(cfg *config.Config, logger *logrus.Logger) (domain.SnapshotRepository, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.SnapshotBackend {
	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		repo := repository.NewPostgresSnapshotRepository(database, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("Failed to prepare snapshot schema: %v", err)
		}
		logger.Info("Postgres snapshot backend initialized.")
		return repo, func() { database.Close() }

	case config.BackendRedis:
		client, err := db.ConnectRedis(ctx, db.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		logger.Info("Redis snapshot backend initialized.")
		return repository.NewRedisSnapshotRepository(client, cfg.RedisKeyPrefix, logger), func() { client.Close() }

	default:
		logger.Info("Snapshot backend disabled.")
		return nil, func() {}
	}
}
