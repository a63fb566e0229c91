package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/gym-dashboard/authapi"
	"github.com/jrsteele09/gym-dashboard/credentials"
	"github.com/jrsteele09/gym-dashboard/gateway"
	"github.com/jrsteele09/gym-dashboard/internal/config"
	"github.com/jrsteele09/gym-dashboard/internal/logging"
	"github.com/jrsteele09/gym-dashboard/internal/obs"
	"github.com/jrsteele09/gym-dashboard/notice"
	"github.com/jrsteele09/gym-dashboard/server"
	"github.com/jrsteele09/gym-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running dashboard")
	}
	log.Info().Msg("Dashboard stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv())
	obs.Init()
	displayAppname(c.GetAppName())

	repo, closeRepo, err := newCredentialsRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	httpClient := &http.Client{Timeout: c.GetHTTPTimeout()}
	manager := sessions.NewManager(authapi.NewClient(c.GetAPIBaseURL(), httpClient), repo, c)
	defer manager.Close()

	notices := notice.NewRecorder(notice.DefaultLimit)
	gw := gateway.NewClient(c.GetAPIBaseURL(), httpClient, manager, manager, manager.ExpireSession, notices)

	handler, err := server.New(c, manager, gw, notices)
	if err != nil {
		return err
	}

	// Pages answer 503 until the stored session has been restored
	go manager.Init(context.Background())

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// newCredentialsRepo opens the configured credential store and returns its close func.
func newCredentialsRepo(c config.StoreConfig) (credentials.Repo, func(), error) {
	switch c.GetStoreBackend() {
	case config.StoreBackendRedis:
		client, err := credentials.NewRedisClient(credentials.RedisConfig{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using Redis credential store")
		return credentials.NewRedisRepo(client, c.GetRedisKey()), func() { _ = client.Close() }, nil
	case config.StoreBackendMemory:
		log.Warn().Msg("Using in-memory credential store, sessions will not survive a restart")
		return credentials.NewInMemoryRepo(), func() {}, nil
	default:
		var opts []credentials.FileRepoOption
		if secret := c.GetStoreSecret(); secret != "" {
			opts = append(opts, credentials.WithSecret(secret))
		}
		repo, err := credentials.NewFileRepo(c.GetDataFolder(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("credentials.NewFileRepo: %w", err)
		}
		log.Info().Str("folder", c.GetDataFolder()).Bool("encrypted", len(opts) > 0).Msg("Using file credential store")
		return repo, func() {}, nil
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
