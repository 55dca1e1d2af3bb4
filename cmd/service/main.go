package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/config"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		ServiceName:   "nutrition-trends",
		Environment:   cfg.Environment,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     sentryDSN,
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)
	log.Debugf("measurement source [%s], series cache [%s], timezone [%s]", cfg.MeasurementSource, cfg.CacheBackend, cfg.Timezone)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	postgresPassword := os.Getenv("NUTRITION_POSTGRES_PASS")
	if cfg.MeasurementSource == config.SourcePostgres && postgresPassword == "" {
		log.Warnln("postgres password not set. use NUTRITION_POSTGRES_PASS")
	}

	redisPassword := os.Getenv("NUTRITION_REDIS_PASS")
	if cfg.RedisHost != "" && redisPassword == "" {
		log.Warnln("redis password not set. use NUTRITION_REDIS_PASS")
	}

	if cfg.HoneycombTracingEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:           cfg,
			VersionInfo:      versionInfo,
			PostgresUser:     os.Getenv("NUTRITION_POSTGRES_USER"),
			PostgresPassword: postgresPassword,
			RedisPassword:    redisPassword,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash assumes the binary runs from the project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(stdout)), nil
}
