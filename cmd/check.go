package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/luma/usenet/client"
	"github.com/luma/usenet/internal/env"
	"github.com/luma/usenet/transport"
)

var (
	checkAddr      string
	checkGroup     string
	checkPlaintext bool
)

func init() {
	flags := CheckCmd.PersistentFlags()

	flags.StringVar(&checkAddr, "addr", "", "Server address as host:port, overrides USENET_ADDR")
	flags.StringVar(&checkGroup, "group", "", "Newsgroup to select after connecting, overrides USENET_GROUP")
	flags.BoolVar(&checkPlaintext, "plaintext", false, "Force a plain TCP connection even when TLS is configured")
}

var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Connect to a news server and report what it offers",
	Long: `Connect to a news server and report what it offers

Connects (with TLS and AUTHINFO when configured), negotiates
capabilities, optionally selects a group, and prints a JSON report.

Configuration comes from USENET_* environment variables (see the env
package), overridable with flags.

Usage
	usenet check --addr news.example.com:563 --group misc.test

`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
		defer signalStop()

		log, err := env.MakeLogger()
		if err != nil {
			return err
		}

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		if checkAddr != "" {
			conf.Addr = checkAddr
		}
		if checkGroup != "" {
			conf.Group = checkGroup
		}
		if conf.Addr == "" {
			return fmt.Errorf("no server address, set USENET_ADDR or pass --addr")
		}

		config := client.Config{
			Username:    conf.Username,
			Password:    conf.Password,
			Group:       conf.Group,
			ReadTimeout: conf.ReadTimeout,
			Log:         log.Named("client"),
		}

		if conf.TLS && !checkPlaintext {
			host, _, err := net.SplitHostPort(conf.Addr)
			if err != nil {
				host = conf.Addr
			}
			config.TLS = transport.DefaultTLSConfig(host)
		}

		c, err := config.Connect(conf.Addr)
		if err != nil {
			return err
		}

		report, err := buildReport(c)
		if err != nil {
			return err
		}

		if err := c.Close(); err != nil {
			log.Warn("Failed to close session cleanly", zap.Error(err))
		}

		fmt.Println(report)
		return nil
	},
}

// buildReport renders the session state as a JSON document.
func buildReport(c *client.Client) (string, error) {
	report := "{}"

	report, err := sjson.Set(report, "greeting", c.Greeting().FirstLineTextLossy())
	if err != nil {
		return "", err
	}

	for label, params := range c.Capabilities() {
		path := "capabilities." + strings.ReplaceAll(label, ".", `\.`)

		report, err = sjson.Set(report, path, params)
		if err != nil {
			return "", err
		}
	}

	if group := c.Group(); group != nil {
		report, err = sjson.Set(report, "group.name", group.Name)
		if err != nil {
			return "", err
		}
		report, err = sjson.Set(report, "group.count", group.Count)
		if err != nil {
			return "", err
		}
		report, err = sjson.Set(report, "group.low", group.Low)
		if err != nil {
			return "", err
		}
		report, err = sjson.Set(report, "group.high", group.High)
		if err != nil {
			return "", err
		}
	}

	return report, nil
}
