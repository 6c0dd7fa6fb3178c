package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stockcast/backend-go/internal/cache"
	"github.com/andresuchdata/stockcast/backend-go/internal/config"
	"github.com/andresuchdata/stockcast/backend-go/internal/repository"
	"github.com/andresuchdata/stockcast/backend-go/internal/service"
	"github.com/andresuchdata/stockcast/backend-go/internal/storage"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newOutputFlag(defaultName string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "output",
		Usage: "Path for the CSV report",
		Value: defaultName,
	}
}

func newUploadFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "upload",
		Usage: "Upload the CSV report to the configured report bucket",
		Value: false,
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Run catalog-wide forecast scans and export CSV reports",
		Commands: []*cli.Command{
			{
				Name:  "reorder-scan",
				Usage: "Forecast demand for every active product and compute reorder points",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:    "lead-time-days",
						Usage:   "Supplier lead time in days",
						Value:   7,
						EnvVars: []string{"ENGINE_DEFAULT_LEAD_TIME_DAYS"},
					},
					&cli.Float64Flag{
						Name:    "service-level",
						Usage:   "Target service level between 0 and 1",
						Value:   0.95,
						EnvVars: []string{"ENGINE_SERVICE_LEVEL"},
					},
					newOutputFlag("reorder_scan.csv"),
					newUploadFlag(),
				},
				Action: runReorderScan,
			},
			{
				Name:  "batch-pricing",
				Usage: "Compute price recommendations for every active product",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newOutputFlag("batch_pricing.csv"),
					newUploadFlag(),
				},
				Action: runBatchPricing,
			},
			{
				Name:   "flush-cache",
				Usage:  "Drop every cached forecast, forcing recomputation after a data load",
				Action: runFlushCache,
			},
			{
				Name:   "list-reports",
				Usage:  "List CSV reports in the report bucket",
				Action: runListReports,
			},
			{
				Name:  "fetch-report",
				Usage: "Download a CSV report from the report bucket",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "key",
						Usage:    "Object key of the report to download",
						Required: true,
					},
					newOutputFlag(""),
				},
				Action: runFetchReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newScanService(c *cli.Context) (*service.ForecastService, func(), error) {
	db, err := sqlx.Connect("postgres", c.String("db-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cfg := config.Load()
	repo := repository.NewSnapshotRepository(db)
	svc := service.NewForecastService(repo, cache.NewNoopForecastCache(), cfg.Engine)
	return svc, func() { db.Close() }, nil
}

func runReorderScan(c *cli.Context) error {
	svc, closeDB, err := newScanService(c)
	if err != nil {
		return err
	}
	defer closeDB()

	leadTimeDays := c.Int("lead-time-days")
	serviceLevel := c.Float64("service-level")

	log.Printf("Running reorder scan (lead time %d days, service level %.2f)...", leadTimeDays, serviceLevel)
	result, err := svc.ReorderScan(c.Context, leadTimeDays, serviceLevel)
	if err != nil {
		return fmt.Errorf("reorder scan failed: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{
		"product_id", "product_name", "category", "current_quantity",
		"reorder_point", "safety_stock", "needs_reorder",
		"recommended_order_quantity", "forecast_confidence",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, item := range result.Products {
		record := []string{
			item.ProductID,
			item.ProductName,
			item.Category,
			strconv.Itoa(item.CurrentQuantity),
			strconv.Itoa(item.ReorderPoint),
			strconv.Itoa(item.SafetyStock),
			strconv.FormatBool(item.NeedsReorder),
			strconv.Itoa(item.RecommendedOrderQty),
			string(item.ForecastConfidence),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	if err := publishReport(c, "reorder_scan", buf.Bytes()); err != nil {
		return err
	}

	log.Printf("Reorder scan completed: %d products scanned, %d need reorder", result.TotalProducts, result.NeedsReorderCount)
	return nil
}

func runBatchPricing(c *cli.Context) error {
	svc, closeDB, err := newScanService(c)
	if err != nil {
		return err
	}
	defer closeDB()

	log.Println("Running batch pricing...")
	result, err := svc.BatchPricing(c.Context)
	if err != nil {
		return fmt.Errorf("batch pricing failed: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{
		"product_id", "product_name", "category", "current_price",
		"recommended_price", "price_difference",
		"expected_margin_percent", "needs_adjustment",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, item := range result.Products {
		record := []string{
			item.ProductID,
			item.ProductName,
			item.Category,
			strconv.FormatFloat(item.CurrentPrice, 'f', 2, 64),
			strconv.FormatFloat(item.RecommendedPrice, 'f', 2, 64),
			strconv.FormatFloat(item.PriceDifference, 'f', 2, 64),
			strconv.FormatFloat(item.ExpectedMarginPercent, 'f', 2, 64),
			strconv.FormatBool(item.NeedsAdjustment),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	if err := publishReport(c, "batch_pricing", buf.Bytes()); err != nil {
		return err
	}

	log.Printf("Batch pricing completed: %d products scanned, %d need adjustment", result.TotalProducts, result.NeedsAdjustmentCount)
	return nil
}

func publishReport(c *cli.Context, reportName string, data []byte) error {
	outputPath := c.String("output")
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	log.Printf("Wrote report to %s", outputPath)

	if !c.Bool("upload") {
		return nil
	}

	client, err := newReportStorage()
	if err != nil {
		return err
	}

	key := fmt.Sprintf("reports/%s_%s.csv", reportName, time.Now().UTC().Format("2006-01-02"))
	if err := client.UploadObject(c.Context, key, "text/csv", data); err != nil {
		return err
	}
	log.Printf("Uploaded report to %s", key)
	return nil
}

func newReportStorage() (*storage.MinioClient, error) {
	cfg := config.Load()
	if !cfg.Reports.Enabled {
		return nil, fmt.Errorf("report bucket access is disabled, set REPORTS_ENABLED=true")
	}

	client, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Reports.Endpoint,
		AccessKey: cfg.Reports.AccessKey,
		SecretKey: cfg.Reports.SecretKey,
		Bucket:    cfg.Reports.Bucket,
		Region:    cfg.Reports.Region,
		UseSSL:    cfg.Reports.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build storage client: %w", err)
	}
	return client, nil
}

func runFlushCache(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Cache.Enabled {
		return fmt.Errorf("forecast cache is disabled, set CACHE_ENABLED=true")
	}

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to connect to cache: %w", err)
	}

	if err := forecastCache.InvalidateAll(c.Context); err != nil {
		return fmt.Errorf("failed to flush forecast cache: %w", err)
	}

	log.Println("Forecast cache flushed")
	return nil
}

func runListReports(c *cli.Context) error {
	client, err := newReportStorage()
	if err != nil {
		return err
	}

	objects, err := client.ListObjects(c.Context, "reports/")
	if err != nil {
		return err
	}

	if len(objects) == 0 {
		log.Println("No reports found")
		return nil
	}
	for _, object := range objects {
		fmt.Printf("%s\t%d bytes\n", object.Key, object.Size)
	}
	return nil
}

func runFetchReport(c *cli.Context) error {
	client, err := newReportStorage()
	if err != nil {
		return err
	}

	key := c.String("key")
	outputPath := c.String("output")
	if outputPath == "" {
		outputPath = filepath.Base(key)
	}

	if err := client.DownloadObject(c.Context, key, outputPath); err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}

	log.Printf("Downloaded %s to %s", key, outputPath)
	return nil
}
