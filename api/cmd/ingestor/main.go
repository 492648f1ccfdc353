package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"gaianet/api/internal/config"
	"gaianet/api/internal/gbif"
	"gaianet/api/internal/store"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}

	creds := gbif.Credentials{
		Username: cfg.GBIFUsername,
		Password: cfg.GBIFPassword,
		Email:    cfg.GBIFEmail,
	}
	if creds.Username == "" || creds.Password == "" {
		log.Printf("WARNING: GBIF credentials not set; download triggers will be rejected upstream")
	}

	client := gbif.NewClient(creds)

	var jobs *store.JobRepo
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("sql.Open: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			cancel()
			log.Fatalf("db.Ping: %v", err)
		}
		cancel()
		jobs = store.NewJobRepo(db)
		log.Printf("db connected: job ledger enabled")
	} else {
		log.Printf("DATABASE_URL not set: job ledger disabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			out := map[string]any{
				"service": "gaianet-ingestor",
				"status":  "running",
			}
			if jobs != nil {
				recent, err := jobs.Recent(r.Context(), 20)
				if err != nil {
					log.Printf("job ledger recent: %v", err)
				} else {
					out["recent_jobs"] = recent
				}
			}
			writeJSON(w, http.StatusOK, out)
		case http.MethodPost:
			handleTrigger(w, r, client, creds, jobs)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	addr := ":" + cfg.Port
	log.Printf("ingestor listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func handleTrigger(w http.ResponseWriter, r *http.Request, client *gbif.Client, creds gbif.Credentials, jobs *store.JobRepo) {
	daysBack := gbif.DefaultDaysBack
	if v := strings.TrimSpace(r.URL.Query().Get("days_back")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"status":  "failed",
				"details": "days_back must be a positive integer",
			})
			return
		}
		daysBack = n
	}

	dr := gbif.BuildDownloadRequest(creds, daysBack, time.Now().UTC())

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	key, err := client.SubmitDownload(ctx, dr)
	if err != nil {
		var se *gbif.StatusError
		if errors.As(err, &se) {
			log.Printf("gbif rejected download request: %v", se)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"status":  "failed",
				"code":    se.Code,
				"details": se.Body,
			})
			return
		}
		log.Printf("gbif submit: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"status":  "failed",
			"details": err.Error(),
		})
		return
	}

	log.Printf("gbif download submitted: key=%s days_back=%d", key, daysBack)
	if jobs != nil {
		if err := jobs.Record(r.Context(), key, creds.Username, daysBack); err != nil {
			log.Printf("job ledger record: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "submitted",
		"download_key": key,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
