// Copyright 2025 FluxHook Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hookd is the HTTP face of the service: it decodes broker
// webhook calls, hands them to the auth decision service, and encodes
// the verdicts. Run wires configuration, the credential store, the
// optional actor cache, and the audit queue together.
package hookd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/rs/cors"

	"fluxhook/auth"
)

// Run starts the service and blocks until SIGINT or SIGTERM.
func Run() {
	cfg, err := LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	var resolver auth.IdentityResolver = auth.NewPostgresResolver(db, auth.ResolverConfig{
		VerifyTokenStatement: cfg.Database.Statements.VerifyToken,
		TokenStatement:       cfg.Database.Statements.Token,
		NodeStatement:        cfg.Database.Statements.Node,
	})
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		resolver = auth.NewCachingResolver(resolver, rdb, time.Duration(cfg.Redis.TTL))
		log.Printf("actor cache enabled via redis at %s", cfg.Redis.Addr)
	}

	audit := auth.NewAuditQueue(db, auth.AuditConfig{
		Statement:   cfg.Database.Statements.Audit,
		ServiceName: cfg.Audit.ServiceName,
		QueueSize:   cfg.Audit.QueueSize,
		Workers:     cfg.Audit.Workers,
	})

	svc := auth.NewService(resolver, nil, audit, auth.ServiceConfig{
		PublishUsername:   cfg.Auth.PublishUsername,
		MaxDateSkew:       time.Duration(cfg.Auth.MaxDateSkew),
		ForceCleanSession: cfg.Auth.ForceCleanSession,
		Host:              cfg.Auth.Host,
		Path:              cfg.Auth.Path,
	})

	router := mux.NewRouter()
	NewServer(svc).Routes(router)
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler(router)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}
	go func() {
		log.Printf("fluxhook listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	audit.Close()
}

// openDatabase opens and pings the credential store. Connection
// attempts retry with backoff so a restart can outlast a database
// failover or slow DNS.
func openDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	const maxRetries = 5
	var (
		db  *sql.DB
		err error
	)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = sql.Open("postgres", cfg.ConnectionURL())
		if err == nil {
			if err = db.Ping(); err == nil {
				return db, nil
			}
			db.Close()
		}
		if attempt < maxRetries {
			backoff := time.Duration(attempt*2) * time.Second
			log.Printf("database connection failed (attempt %d/%d): %v, retrying in %v",
				attempt, maxRetries, err, backoff)
			time.Sleep(backoff)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}
