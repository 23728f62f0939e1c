package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ktcalder/chatrelay/internal/api"
	"github.com/ktcalder/chatrelay/internal/config"
	"github.com/ktcalder/chatrelay/internal/identity"
	"github.com/ktcalder/chatrelay/internal/server"
	"github.com/ktcalder/chatrelay/internal/stats"
	"github.com/ktcalder/chatrelay/internal/store"
	_ "github.com/lib/pq"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	identityDB     string
	uploadDir      string
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "message store connection string")
	flag.StringVar(&identityDB, "identity-db", "identities.db", "path to the identity database")
	flag.StringVar(&uploadDir, "upload-dir", "uploads", "directory for uploaded attachments")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[chatrelay] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, identityDB, uploadDir, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	messageStore, err := store.NewPgMessageStore(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("message store open:", err)
	}
	defer func() {
		if err := messageStore.Close(); err != nil {
			logger.Fatal("message store close:", err)
		}
	}()

	if err := messageStore.Migrate(); err != nil {
		logger.Fatal("migrate:", err)
	}

	directory, err := identity.Open(cfg.IdentityDBPath)
	if err != nil {
		logger.Fatal("identity directory open:", err)
	}
	defer func() {
		if err := directory.Close(); err != nil {
			logger.Fatal("identity directory close:", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	chatServer, err := server.NewChatServer(logger, messageStore, directory, statsUpdater)
	if err != nil {
		logger.Fatal("new chat server:", err)
	}

	srv := api.NewChatRelayApp(mux, logger, chatServer, messageStore, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go chatServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("chat server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
