package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Aashish23092/bill-extraction/client"
	"github.com/Aashish23092/bill-extraction/config"
	"github.com/Aashish23092/bill-extraction/handler"
	"github.com/Aashish23092/bill-extraction/ocr"
	"github.com/Aashish23092/bill-extraction/service"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()
	setupLogging(cfg)
	log.Println("TESSDATA_PREFIX set to:", cfg.TesseractDataPath)

	// Initialize Tesseract client, each OCR call owns its own engine handle
	tesseractClient := ocr.NewTesseractClient(cfg.TesseractDataPath, cfg.OCRLanguage, cfg.OCRTimeout)

	// Structured extractors are tried in this order before OCR
	var structured []service.StructuredExtractor
	if cfg.DonutEndpoint != "" {
		structured = append(structured, client.NewDonutClient(cfg.DonutEndpoint, cfg.InferenceTimeout))
		log.Printf("Donut extractor enabled at %s", cfg.DonutEndpoint)
	}
	if cfg.EnableQR {
		structured = append(structured, client.NewQRClient())
	}

	// Initialize service layer
	pdfProcessor := service.NewPDFProcessor()
	pageExtractor := service.NewPageExtractor(structured, tesseractClient, cfg.DonutTaskPrompt, cfg.InferenceTimeout)
	billService := service.NewBillService(pdfProcessor, pageExtractor, cfg.PageWorkers, cfg.OCRFailurePolicy)

	// Initialize handler layer
	downloader := client.NewDownloader(cfg.DownloadTimeout, cfg.MaxFileSize)
	billHandler := handler.NewBillHandler(billService, downloader, cfg.MaxFileSize)

	// Setup Gin router
	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Bill Extraction",
		})
	})

	router.POST("/extract-bill-data", billHandler.ExtractBillData)

	// API routes
	api := router.Group("/api/v1")
	{
		bills := api.Group("/bills")
		{
			bills.POST("/extract", billHandler.UploadBill)
		}
	}

	// Start server
	log.Printf("Starting Bill Extraction Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
