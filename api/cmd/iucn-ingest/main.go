package main

import (
	"bytes"
	"context"
	"log"

	"gaianet/api/internal/config"
	"gaianet/api/internal/iucn"
	"gaianet/api/internal/storage"
)

const objectName = "iucn_species_raw.csv"

func main() {
	cfg := config.Load()
	ctx := context.Background()

	client := iucn.NewClient(cfg.IUCNBaseURL, cfg.IUCNToken)

	log.Printf("fetching IUCN species list from %s", cfg.IUCNBaseURL)
	list, err := client.Species(ctx)
	if err != nil {
		log.Fatalf("iucn fetch: %v", err)
	}
	log.Printf("fetched %d species records", len(list))

	var buf bytes.Buffer
	if err := iucn.WriteCSV(&buf, list); err != nil {
		log.Fatalf("write csv: %v", err)
	}

	st, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	if err := st.Put(ctx, objectName, buf.Bytes(), "text/csv"); err != nil {
		log.Fatalf("upload: %v", err)
	}
	log.Printf("upload complete: s3://%s/%s (%d bytes)", cfg.S3Bucket, objectName, buf.Len())
}
