package main

import (
	"context"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"ragchat/config"
	"ragchat/database"
	"ragchat/entities"
	"ragchat/router"

	"ragchat/pkg/ai"
	"ragchat/pkg/embedder"
	"ragchat/pkg/extract"
	"ragchat/pkg/registry"
	"ragchat/pkg/retriever"
	"ragchat/pkg/vectorindex"

	chatCtrlImp "ragchat/pkg/chat/controllerImp"
	chatSvcImp "ragchat/pkg/chat/serviceImp"
	healthCtrlImp "ragchat/pkg/health/controllerImp"
	ingestCtrlImp "ragchat/pkg/ingest/controllerImp"
	ingestRepoImp "ragchat/pkg/ingest/repositoryImp"
	ingestSvcImp "ragchat/pkg/ingest/serviceImp"
)

func main() {
	// 1) Config
	cfg := config.Load()

	// 2) DB (sqlite) + automigrate
	db := database.OpenSQLite(cfg.DBPath)
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	// 3) Embedder (mock fallback)
	var emb embedder.Embedder
	if cfg.EmbEndpoint != "" {
		emb = embedder.NewOpenAI(cfg.EmbEndpoint, cfg.EmbAPIKey, cfg.EmbModel, cfg.EmbDimension, cfg.ServiceTimeout)
	} else {
		emb = embedder.NewMock(cfg.EmbDimension)
	}

	// 4) Vector index (in-memory fallback)
	var idx vectorindex.Index
	if cfg.QdrantURL != "" {
		q := vectorindex.NewQdrant(vectorindex.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Dimension:  cfg.EmbDimension,
			Timeout:    cfg.ServiceTimeout,
		})
		if err := q.Init(context.Background()); err != nil {
			log.Fatalf("qdrant init: %v", err)
		}
		idx = q
	} else {
		idx = vectorindex.NewMemory()
	}

	// 5) LLM (mock fallback)
	var llm ai.Client
	if cfg.LLMEndpoint != "" && cfg.LLMAPIKey != "" {
		llm = ai.NewOpenAI(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, float32(cfg.Temperature), cfg.MaxTokens, cfg.ServiceTimeout)
	} else {
		llm = ai.NewMock()
	}

	// 6) Registries shared across features
	jobs := registry.New[entities.Job]()
	sessions := registry.New[entities.ChatSession]()

	// 7) Ingestion
	ingestRepo := ingestRepoImp.New(db, cfg.UploadDir)
	ingestSvc := ingestSvcImp.New(ingestRepo, extract.NewPDFToText(), emb, idx, jobs, ingestSvcImp.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Workers:      cfg.Workers,
		FileTimeout:  cfg.FileTimeout,
	})
	defer ingestSvc.Close()
	ingestCtrl := ingestCtrlImp.New(ingestSvc)

	// 8) Chat
	chatSvc := chatSvcImp.New(retriever.New(emb, idx), llm, jobs, sessions, chatSvcImp.Config{
		TopK:          cfg.TopK,
		HistoryWindow: cfg.HistoryWindow,
	})
	chatCtrl := chatCtrlImp.New(chatSvc)

	// 9) Health
	hCtrl := healthCtrlImp.NewHealthCtrl(db, idx, ingestSvc, chatSvc)

	// 10) Echo + router
	e := echo.New()
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))

	r := router.New(e, ingestCtrl, chatCtrl, hCtrl)

	// 11) Start
	log.Printf("listening on :%s", cfg.Port)
	if err := r.Start(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
