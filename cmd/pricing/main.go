// Command pricing serves the economy pricing API.
//
// Usage:
//
//	pricing serve --config configs/pricing.yaml
//	pricing decode <blob>
//	pricing version
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rickgao/economy-pricing/internal/app"
	"github.com/rickgao/economy-pricing/internal/config"
	"github.com/rickgao/economy-pricing/internal/item"
	"github.com/rickgao/economy-pricing/internal/version"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "pricing",
		Usage:     "Economy price aggregation service",
		Version:   version.String(),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			serveCommand(),
			decodeCommand(),
			versionCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the refresh jobs and the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config (defaults only when empty)",
				EnvVars: []string{"PRICING_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Override logging.level (debug, info, warn, error)",
				EnvVars: []string{"PRICING_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Override server.addr",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := config.LoadWithDefaults(c.String("config"))
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := app.NewLogger(cfg.Logging, c.App.ErrWriter)
	if err != nil {
		return err
	}

	logger.Info("starting pricing",
		"version", version.Version,
		"commit", version.Commit,
		"config", c.String("config"),
	)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, nil, logger)
	if err != nil {
		return err
	}
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("pricing stopped")
	return nil
}

type decodedAttribute struct {
	Name  string `json:"name"`
	Level int64  `json:"level"`
}

type decodedItem struct {
	ID         string             `json:"id"`
	RawID      string             `json:"raw_id"`
	Attributes []decodedAttribute `json:"attributes"`
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Resolve an item blob to its canonical id",
		ArgsUsage: "[blob]  (read from stdin when omitted)",
		Action:    runDecode,
	}
}

func runDecode(c *cli.Context) error {
	blob := c.Args().First()
	if blob == "" {
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read blob: %w", err)
		}
		blob = strings.TrimSpace(line)
	}
	if blob == "" {
		return errors.New("no blob given")
	}

	ident, err := item.NewResolver().Resolve(blob)
	if err != nil {
		return err
	}

	out := decodedItem{
		ID:         ident.ID,
		RawID:      ident.RawID,
		Attributes: make([]decodedAttribute, 0, len(ident.Attributes)),
	}
	for _, a := range ident.Attributes {
		out.Attributes = append(out.Attributes, decodedAttribute{Name: a.Name, Level: a.Level})
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			_, err := fmt.Fprintln(c.App.Writer, version.String())
			return err
		},
	}
}
