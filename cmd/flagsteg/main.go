package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/flagsteg"
	"github.com/bodgit/flagsteg/config"
	"github.com/bodgit/flagsteg/preview"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

const (
	defaultConfig = "flagsteg.yaml"
	defaultDB     = "flagsteg.db"
)

var errTerminal = errors.New("refusing to write an image to a terminal, use --output")

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// settings merges the configuration file with any flags that were set
func settings(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("style") {
		cfg.Style = c.String("style")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("db") || cfg.DB == "" {
		cfg.DB = c.String("db")
	}
	return cfg, nil
}

func newFlag(c *cli.Context) (flagsteg.Flag, *config.Config, error) {
	cfg, err := settings(c)
	if err != nil {
		return nil, nil, err
	}
	f, err := flagsteg.Lookup(cfg.Style, cfg.Width, cfg.Height)
	if err != nil {
		return nil, nil, err
	}
	return f, cfg, nil
}

func newFlagSteg(c *cli.Context, withDB bool) (*flagsteg.FlagSteg, func(), error) {
	f, cfg, err := newFlag(c)
	if err != nil {
		return nil, nil, err
	}

	if !withDB {
		return flagsteg.New(f, nil, newLogger(c)), func() {}, nil
	}

	db, err := flagsteg.NewFlagDB(cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	return flagsteg.New(f, db, newLogger(c)), func() { db.Close() }, nil
}

func readInput(c *cli.Context) ([]byte, error) {
	if c.NArg() < 1 || c.Args().First() == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(c.Args().First())
}

func writeOutput(c *cli.Context, b []byte, image bool) error {
	if file := c.String("output"); file != "" && file != "-" {
		return ioutil.WriteFile(file, b, 0644)
	}
	if image && isatty.IsTerminal(os.Stdout.Fd()) {
		return errTerminal
	}
	_, err := os.Stdout.Write(b)
	return err
}

func exit(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err, 1)
}

func main() {
	app := cli.NewApp()

	app.Name = "flagsteg"
	app.Usage = "Hide data inside pride flags"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write to `FILE` instead of standard output",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"FLAGSTEG_CONFIG"},
			Value:   filepath.Join(cwd, defaultConfig),
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "style",
			EnvVars: []string{"FLAGSTEG_STYLE"},
			Value:   "transgender",
			Usage:   "flag style, one of " + strings.Join(flagsteg.Styles(), ", "),
		},
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"FLAGSTEG_WIDTH"},
			Value:   128,
			Usage:   "flag width in pixels",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"FLAGSTEG_HEIGHT"},
			Value:   64,
			Usage:   "flag height in pixels",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"FLAGSTEG_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "generate",
			Usage: "Generate a flag with no data",
			Flags: []cli.Flag{outputFlag},
			Action: func(c *cli.Context) error {
				f, _, err := newFlag(c)
				if err != nil {
					return exit(err)
				}
				b, err := f.Generate()
				if err != nil {
					return exit(err)
				}
				return exit(writeOutput(c, b, true))
			},
		},
		{
			Name:      "encode",
			Usage:     "Encode data into a flag",
			ArgsUsage: "[FILE]",
			Flags:     []cli.Flag{outputFlag},
			Action: func(c *cli.Context) error {
				f, _, err := newFlag(c)
				if err != nil {
					return exit(err)
				}
				payload, err := readInput(c)
				if err != nil {
					return exit(err)
				}
				b, err := f.Encode(payload)
				if err != nil {
					return exit(err)
				}
				return exit(writeOutput(c, b, true))
			},
		},
		{
			Name:      "decode",
			Usage:     "Decode data from a flag",
			ArgsUsage: "[FILE]",
			Flags:     []cli.Flag{outputFlag},
			Action: func(c *cli.Context) error {
				f, _, err := newFlag(c)
				if err != nil {
					return exit(err)
				}
				b, err := readInput(c)
				if err != nil {
					return exit(err)
				}
				payload, err := f.Decode(b)
				if err != nil {
					return exit(err)
				}
				return exit(writeOutput(c, payload, false))
			},
		},
		{
			Name:      "validate",
			Usage:     "Check a flag looks like it carries data",
			ArgsUsage: "[FILE]",
			Action: func(c *cli.Context) error {
				f, _, err := newFlag(c)
				if err != nil {
					return exit(err)
				}
				b, err := readInput(c)
				if err != nil {
					return exit(err)
				}
				if !f.IsValid(b) {
					return cli.Exit("invalid", 1)
				}
				fmt.Println("valid")
				return nil
			},
		},
		{
			Name:  "capacity",
			Usage: "Print how many bytes a flag can hold",
			Action: func(c *cli.Context) error {
				f, cfg, err := newFlag(c)
				if err != nil {
					return exit(err)
				}
				fmt.Printf("%dx%d %s flag: %d data pixels, %d bytes\n", cfg.Width, cfg.Height, f.Name(), f.Capacity(), f.Capacity()>>1)
				return nil
			},
		},
		{
			Name:      "preview",
			Usage:     "Write a reduced color preview of a flag",
			ArgsUsage: "[FILE]",
			Flags: []cli.Flag{
				outputFlag,
				&cli.IntFlag{
					Name:  "colors",
					Value: preview.DefaultColors,
					Usage: "palette size",
				},
			},
			Action: func(c *cli.Context) error {
				b, err := readInput(c)
				if err != nil {
					return exit(err)
				}
				out := new(bytes.Buffer)
				if err := preview.EncodeFlag(out, bytes.NewReader(b), c.Int("colors")); err != nil {
					return exit(err)
				}
				return exit(writeOutput(c, out.Bytes(), true))
			},
		},
		{
			Name:      "scan",
			Usage:     "Encode every file in a directory tree into a flag",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				m, done, err := newFlagSteg(c, false)
				if err != nil {
					return exit(err)
				}
				defer done()
				return exit(m.EncodeTree(c.Args().First()))
			},
		},
		{
			Name:      "unscan",
			Usage:     "Decode every flag in a directory tree",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				m, done, err := newFlagSteg(c, false)
				if err != nil {
					return exit(err)
				}
				defer done()
				return exit(m.DecodeTree(c.Args().First()))
			},
		},
		{
			Name:      "store",
			Usage:     "Encode data into a flag held in the database",
			ArgsUsage: "NAME [FILE]",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				m, done, err := newFlagSteg(c, true)
				if err != nil {
					return exit(err)
				}
				defer done()

				var payload []byte
				if c.NArg() < 2 || c.Args().Get(1) == "-" {
					payload, err = ioutil.ReadAll(os.Stdin)
				} else {
					payload, err = ioutil.ReadFile(c.Args().Get(1))
				}
				if err != nil {
					return exit(err)
				}

				_, err = m.Store(c.Args().First(), payload)
				return exit(err)
			},
		},
		{
			Name:      "load",
			Usage:     "Decode data from a flag held in the database",
			ArgsUsage: "NAME",
			Flags:     []cli.Flag{outputFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				m, done, err := newFlagSteg(c, true)
				if err != nil {
					return exit(err)
				}
				defer done()

				payload, err := m.Load(c.Args().First())
				if err != nil {
					return exit(err)
				}
				if payload == nil {
					return exit(fmt.Errorf("no flag named %q", c.Args().First()))
				}
				return exit(writeOutput(c, payload, false))
			},
		},
		{
			Name:  "list",
			Usage: "List the flags held in the database",
			Action: func(c *cli.Context) error {
				_, cfg, err := newFlag(c)
				if err != nil {
					return exit(err)
				}
				db, err := flagsteg.NewFlagDB(cfg.DB)
				if err != nil {
					return exit(err)
				}
				defer db.Close()

				entries, err := db.List()
				if err != nil {
					return exit(err)
				}
				return exit(printEntries(os.Stdout, entries))
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func printEntries(w io.Writer, entries []flagsteg.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%s\n", e.Name, e.Style, e.Width, e.Height, e.Size, e.SHA1); err != nil {
			return err
		}
	}
	return nil
}
