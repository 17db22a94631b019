package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/Kestrer/revise/config"
	"github.com/Kestrer/revise/knowledge"
	"github.com/Kestrer/revise/parser"
	"github.com/Kestrer/revise/session"
)

var configFile string
var invertCards bool
var verboseMode bool
var learnCommand = cli.Command{
	Name:      "learn",
	Aliases:   []string{"l"},
	Usage:     "Revise one or more set files until every card is mastered",
	ArgsUsage: "FILE...",
	Action:    learn,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:        "config",
			Usage:       "configuration file",
			TakesFile:   true,
			Destination: &configFile,
		},
		cli.BoolFlag{
			Name:        "invert",
			Usage:       "swap terms and definitions",
			Destination: &invertCards,
		},
		cli.BoolFlag{
			Name:        "v",
			Usage:       "verbose logging",
			Destination: &verboseMode,
		},
	},
}

func learn(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("learn: at least one set file is required", 2)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	applyLogLevel(cfg)

	title, cards, err := loadSets(c.Args())
	if err != nil {
		return err
	}
	if invertCards {
		for i, card := range cards {
			cards[i] = card.Invert()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return session.Run(ctx, session.Config{
		Title:   title,
		Cards:   cards,
		Store:   store,
		IO:      newTerminal(os.Stdin, os.Stdout),
		Weights: cfg.Weights,
	})
}

// loadSets parses every file, failing with all diagnostics on stderr if any
// file is invalid. Titles are joined with " + " in argument order.
func loadSets(files []string) (string, []*parser.Card, error) {
	var titles []string
	var cards []*parser.Card
	failed := false
	for _, file := range files {
		if filepath.Ext(file) != ".set" {
			logrus.Warnf("%s does not have the .set extension", file)
		}
		doc, diags, err := loadSet(file)
		if err != nil {
			return "", nil, err
		}
		if len(diags) > 0 {
			reportDiagnostics(diags)
			failed = true
			continue
		}
		titles = append(titles, doc.Title)
		cards = append(cards, doc.Cards...)
	}
	if failed {
		return "", nil, cli.NewExitError("", 1)
	}
	return strings.Join(titles, " + "), cards, nil
}

func loadSet(file string) (*parser.SetDocument, []parser.Diagnostic, error) {
	text, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	doc, diags := parser.ValidateString(string(text), file)
	return doc, diags, nil
}

func reportDiagnostics(diags []parser.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s\n%s\n", d, d.At.Context(parser.DefaultLimit))
	}
}

func applyLogLevel(cfg *config.Config) {
	if verboseMode {
		logrus.SetLevel(logrus.TraceLevel)
		return
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func openStore(ctx context.Context, cfg *config.Config) (knowledge.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return knowledge.NewMemoryStore(), nil
	case config.BackendPostgres:
		return knowledge.OpenPostgres(ctx, cfg.Store.URL)
	default:
		path, err := cfg.BoltPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return knowledge.OpenBolt(path)
	}
}
