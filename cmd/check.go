package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/Kestrer/revise/parser"
)

var checkFormat string
var checkCommand = cli.Command{
	Name:      "check",
	Aliases:   []string{"c"},
	Usage:     "Validate set files without starting a session",
	ArgsUsage: "FILE...",
	Action:    check,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:        "format",
			Usage:       "diagnostic output format (text or yaml)",
			Value:       "text",
			Destination: &checkFormat,
		},
	},
}

// yamlDiagnostic is the machine-readable form of one diagnostic.
type yamlDiagnostic struct {
	File    string `yaml:"file"`
	Line    int    `yaml:"line"`
	Column  int    `yaml:"column"`
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
}

func check(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("check: at least one set file is required", 2)
	}
	if checkFormat != "text" && checkFormat != "yaml" {
		return cli.NewExitError(fmt.Sprintf("check: unknown format %q (want text or yaml)", checkFormat), 2)
	}

	var all []parser.Diagnostic
	for _, file := range c.Args() {
		_, diags, err := loadSet(file)
		if err != nil {
			return err
		}
		all = append(all, diags...)
	}

	if checkFormat == "yaml" {
		out := make([]yamlDiagnostic, 0, len(all))
		for _, d := range all {
			line, col := d.Position()
			out = append(out, yamlDiagnostic{
				File:    d.At.Filename(),
				Line:    line,
				Column:  col,
				Kind:    d.Kind.Code(),
				Message: d.Message,
			})
		}
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(out); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else {
		reportDiagnostics(all)
	}

	if len(all) > 0 {
		return cli.NewExitError("", 1)
	}
	return nil
}
