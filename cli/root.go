// Package cli provides the command-line interface for the eve dispatch
// service: it wires a dispatch.Engine up with the demonstration
// controllers, the session and auth plugins, and an echo-backed HTTP
// server, and exposes the result as `eve serve` / `eve routes` cobra
// subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	eve "github.com/evalgo-org/cutelyst-go/common"
	"github.com/evalgo-org/cutelyst-go/controllers"
	"github.com/evalgo-org/cutelyst-go/dispatch"
	httpserver "github.com/evalgo-org/cutelyst-go/http"
	"github.com/evalgo-org/cutelyst-go/plugins/auth"
	"github.com/evalgo-org/cutelyst-go/plugins/session"
	redisqueue "github.com/evalgo-org/cutelyst-go/queue/redis"
	"github.com/evalgo-org/cutelyst-go/security"
	"github.com/evalgo-org/cutelyst-go/transport/echoadapter"
	"github.com/evalgo-org/cutelyst-go/version"
)

// cfgFile holds the path to the configuration file specified via the
// --config flag, following the teacher's viper-based config discovery.
var cfgFile string

// RootCmd is the entry point cobra command. Running it with no
// subcommand is equivalent to `eve serve`.
var RootCmd = &cobra.Command{
	Use:   "eve",
	Short: "a request-dispatch service built on the dispatch package",
	Long: `eve

A small HTTP service demonstrating the dispatch package's Action
registry, Path/Chained/Index/Default dispatchers, request lifecycle,
and URI inversion, fronted by echo and guarded by the session and auth
plugins.`,
	Run: runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.eve.yaml)")
	RootCmd.PersistentFlags().String("port", "8080", "HTTP server port")
	RootCmd.PersistentFlags().String("jwt-secret", "", "JWT secret key for plugins/auth (empty disables auth)")
	RootCmd.PersistentFlags().String("session-redis-url", "", "Redis URL for plugins/session (empty disables sessions)")
	RootCmd.PersistentFlags().String("audit-redis-url", "", "Redis URL for plugins/auth's rejection audit queue (empty disables it)")

	viper.BindPFlag("port", RootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("jwt.secret", RootCmd.PersistentFlags().Lookup("jwt-secret"))
	viper.BindPFlag("session.redis_url", RootCmd.PersistentFlags().Lookup("session-redis-url"))
	viper.BindPFlag("audit.redis_url", RootCmd.PersistentFlags().Lookup("audit-redis-url"))

	RootCmd.AddCommand(routesCmd)
	RootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "serve the dispatch engine over HTTP",
		Run:   runServe,
	})
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".eve")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// auditRejectionQueue must match plugins/auth's unexported auditQueueName:
// it's the queue/redis.Queue queue rejected requests are enqueued onto.
const auditRejectionQueue = "auth_rejections"

// auditConsumerLoop drains plugins/auth's rejection-audit queue, logging
// each rejected request, until stop is closed. Demonstrates the
// Dequeue/MarkProcessing/CompleteJob side of queue/redis.Queue, which the
// fire-and-forget Enqueue call in plugins/auth never exercises on its own.
func auditConsumerLoop(q *redisqueue.Queue, log *logrus.Entry, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		job, err := q.Dequeue(auditRejectionQueue, 5*time.Second)
		if err != nil {
			log.WithError(err).Warn("audit queue dequeue failed")
			continue
		}
		if job == nil {
			continue
		}

		if err := q.MarkProcessing(job.ActionID, time.Now().Add(time.Second)); err != nil {
			log.WithError(err).Warn("audit queue mark-processing failed")
		}

		log.WithFields(logrus.Fields{
			"action_id":   job.ActionID,
			"enqueued_at": job.EnqueuedAt,
			"retry_count": job.RetryCount,
		}).Warn("request rejected by plugins/auth")

		if err := q.CompleteJob(job.ActionID); err != nil {
			log.WithError(err).Warn("audit queue complete-job failed")
		}
	}
}

// buildEngine constructs and freezes the Engine shared by `eve serve`
// and `eve routes`: register the demo controllers, install the session
// plugin (if a Redis URL is configured) and the auth plugin (if a JWT
// secret is configured), then freeze.
func buildEngine(log *logrus.Entry) (*dispatch.Engine, func(), error) {
	engine := dispatch.NewEngine(dispatch.LoadDispatchConfig(""), log)

	if err := controllers.Register(engine); err != nil {
		return nil, nil, fmt.Errorf("registering controllers: %w", err)
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if redisURL := viper.GetString("session.redis_url"); redisURL != "" {
		store, err := session.New(context.Background(), session.Config{RedisURL: redisURL})
		if err != nil {
			return nil, nil, fmt.Errorf("initializing session store: %w", err)
		}
		store.Install(engine)
		closers = append(closers, func() { store.Close() })
	}

	if secret := viper.GetString("jwt.secret"); secret != "" {
		log.Infof("plugins/auth enabled, jwt.secret=%s", eve.MaskSecret(secret))
		jwtService := security.NewJWTService(secret)
		authPlugin := auth.New(jwtService, log)

		if auditURL := viper.GetString("audit.redis_url"); auditURL != "" {
			q, err := redisqueue.NewQueue(context.Background(), redisqueue.Config{RedisURL: auditURL, KeyPrefix: "auth:"})
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("initializing auth audit queue: %w", err)
			}
			authPlugin = authPlugin.WithAuditQueue(q)

			stop := make(chan struct{})
			go auditConsumerLoop(q, log, stop)
			closers = append(closers, func() { q.Close() })
			closers = append(closers, func() { close(stop) })
		}

		authPlugin.Install(engine)
	}

	if err := engine.Freeze(); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("freezing engine: %w", err)
	}

	return engine, closeAll, nil
}

// runServe boots the Engine, mounts it on an echo server via
// transport/echoadapter, and serves until SIGINT/SIGTERM, then shuts
// down gracefully — the same signal-handling shape the teacher's
// original runServer used.
func runServe(cmd *cobra.Command, args []string) {
	log := logrus.NewEntry(eve.NewLogger(eve.DefaultLoggerConfig()))

	engine, closeAll, err := buildEngine(log)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}
	defer closeAll()

	serverCfg := httpserver.DefaultServerConfig()
	e := httpserver.NewEchoServer(serverCfg)
	e.Use(httpserver.SecurityHeadersMiddleware())
	e.HTTPErrorHandler = httpserver.CustomHTTPErrorHandler
	e.GET("/healthz", httpserver.HealthCheckHandler("eve", version.GetEVEVersion()))
	echoadapter.Mount(e, engine)

	port := viper.GetString("port")
	go func() {
		log.Infof("eve serve listening on port %s", port)
		if err := e.Start(":" + port); err != nil {
			log.WithError(err).Info("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	if err := httpserver.GracefulShutdown(e, serverCfg.ShutdownTimeout); err != nil {
		log.Fatal(err)
	}
}
