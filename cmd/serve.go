package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/usenet/internal/env"
	"github.com/luma/usenet/mockserver"
)

var (
	// The host to listen on
	serveHost string

	// The port to listen for http requests on
	serveHTTPPort string

	// The port to listen for nntp clients on
	servePort int

	// Credentials, when set, the mock server will require
	serveUsername string
	servePassword string

	// Newsgroups the mock server carries, as name=count:low:high
	serveGroups []string
)

func init() {
	flags := ServeCmd.PersistentFlags()

	flags.IntVarP(&servePort, "port", "p", 1190, "The port to listen for NNTP clients on")
	flags.StringVar(&serveHTTPPort, "http-port", "1191", "The port to listen to HTTP requests on")
	flags.StringVarP(&serveHost, "host", "a", "0.0.0.0", "The host to listen on")
	flags.StringVar(&serveUsername, "username", "", "Require AUTHINFO with this username")
	flags.StringVar(&servePassword, "password", "", "Require AUTHINFO with this password")
	flags.StringSliceVar(&serveGroups, "group", nil,
		"A newsgroup to carry, as name=count:low:high (repeatable)")
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a mock NNTP server for local development",
	Long: `Run a mock NNTP server for local development

Usage
	usenet serve --group misc.test=1234:3000234:3002322

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
		defer signalStop()

		log, err := env.MakeLogger()
		if err != nil {
			return err
		}

		fileLimit, err := setFileLimit()
		if err != nil {
			return err
		}

		log.Info("Set file limit", zap.Uint64("fileLimit", fileLimit))

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		store := mockserver.NewGroupStore()
		for _, spec := range serveGroups {
			if err := addGroup(store, spec); err != nil {
				return err
			}
		}

		server := mockserver.New(mockserver.Options{
			Host:     serveHost,
			Port:     servePort,
			Username: serveUsername,
			Password: servePassword,
			Store:    store,
			Log:      log.Named("mockserver"),
		})

		if err := server.Start(ctx); err != nil {
			return err
		}

		router := setupRouter(conf.DebugHTTP, log)

		// Ping test
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// The carried newsgroups, as the store's raw JSON document
		router.GET("/groups", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", store.Backup())
		})

		s := &http.Server{
			Addr:    net.JoinHostPort(serveHost, serveHTTPPort),
			Handler: router,
		}

		// Initializing the server in a goroutine so that
		// it won't block the graceful shutdown handling below
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Http server errored", zap.Error(err))
			}
		}()

		log.Info("Listening",
			zap.String("host", serveHost),
			zap.Int("port", servePort),
			zap.String("httpPort", serveHTTPPort))

		// Listen for the interrupt signal.
		<-ctx.Done()

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.SetKeepAlivesEnabled(false)

		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error("Http server forced to shutdown", zap.Error(err))
		}

		if err := server.Close(); err != nil {
			log.Error("Mock server forced to shutdown", zap.Error(err))
		}

		log.Info("Exiting")
		return nil
	},
}

// addGroup parses a name=count:low:high flag value into the store.
func addGroup(store *mockserver.GroupStore, spec string) error {
	parts := strings.SplitN(spec, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid group spec '%s', expected name=count:low:high", spec)
	}

	marks := strings.Split(parts[1], ":")
	if len(marks) != 3 {
		return fmt.Errorf("invalid group spec '%s', expected name=count:low:high", spec)
	}

	numbers := make([]int64, 3)
	for i, mark := range marks {
		n, err := strconv.ParseInt(mark, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid group spec '%s': %w", spec, err)
		}
		numbers[i] = n
	}

	return store.SetGroup(parts[0], numbers[0], numbers[1], numbers[2])
}

func setupRouter(debugHTTP bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - Logs to stdout.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))

	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}

func setFileLimit() (uint64, error) {
	var rLimit syscall.Rlimit

	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	return rLimit.Cur, nil
}
