// Command scansion renders scansion diagrams for Latin hexameter verse files
// and checks the scanner against fixture files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/cours-de-latin/scansion"
	"github.com/cours-de-latin/scansion/internal/config"
	applog "github.com/cours-de-latin/scansion/internal/log"
	"github.com/cours-de-latin/scansion/internal/store"
	"github.com/cours-de-latin/scansion/internal/version"
)

// errCheckFailed makes `check` exit non-zero after printing its report.
var errCheckFailed = errors.New("fixture check failed")

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `name:"config" short:"c" help:"YAML config file" type:"path"`
	LogLevel string `name:"log-level" help:"Override the log level (debug, info, warn, error)"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Render   RenderCmd   `cmd:"" help:"Scan a verse file and write svg/N.svg plus index.html"`
	Fixtures FixturesCmd `cmd:"" help:"Print the fixture triple of every verse in a file"`
	Check    CheckCmd    `cmd:"" help:"Check the scanner against a JSON-lines fixture file"`
	Runs     RunsCmd     `cmd:"" help:"List stored runs, or show one"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// setup loads the configuration, starts logging and builds a scanner.
func (g *Globals) setup() (config.Config, *scansion.Scanner, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return cfg, nil, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	applog.Init(cfg.LogOptions())
	s := scansion.New(
		scansion.WithLogger(applog.WithComponent("scanner")),
		scansion.WithGeometry(cfg.Geometry()),
	)
	return cfg, s, nil
}

// RenderCmd writes the diagrams and the index page for a verse file.
type RenderCmd struct {
	Input string `arg:"" help:"Verse file: first line is the number of the first verse" type:"existingfile"`
	Out   string `name:"out" short:"o" help:"Output directory (default from config)" type:"path"`
	DB    string `name:"db" help:"Record the run in this SQLite database" type:"path"`
}

func (c *RenderCmd) Run(g *Globals, out io.Writer) error {
	cfg, s, err := g.setup()
	if err != nil {
		return err
	}
	defer applog.Close()
	l := applog.WithOperation(applog.WithComponent("cli"), "render")

	verses, err := scansion.LoadVerses(c.Input)
	if err != nil {
		return err
	}
	dir := cfg.Render.OutDir
	if c.Out != "" {
		dir = c.Out
	}
	if err := os.MkdirAll(filepath.Join(dir, "svg"), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	lines := s.ScanVerses(verses)
	clean := 0
	for i, line := range lines {
		if line.Scanned() {
			clean++
		}
		path := filepath.Join(dir, filepath.FromSlash(scansion.DiagramPath(i)))
		if err := os.WriteFile(path, s.Render(line).SVG(), 0o644); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
	}
	page, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	if err := scansion.WritePage(page, scansion.PageEntries(verses), cfg.Render.FontFamily); err != nil {
		page.Close()
		return err
	}
	if err := page.Close(); err != nil {
		return fmt.Errorf("close page: %w", err)
	}
	l.Info("rendered", slog.Int("lines", len(lines)), slog.Int("scanned", clean), slog.String("dir", dir))

	dbPath := cfg.Store.Path
	if c.DB != "" {
		dbPath = c.DB
	}
	if dbPath != "" {
		ctx := context.Background()
		st, err := store.Open(ctx, dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		run, err := st.SaveRun(ctx, c.Input, lines)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run %s\n", run.ID)
	}
	fmt.Fprintf(out, "generated %s + %d svgs (%d of %d lines scanned)\n",
		filepath.Join(dir, "index.html"), len(lines), clean, len(lines))
	return nil
}

// FixturesCmd prints fixture triples, scanning each verse as written.
type FixturesCmd struct {
	Input string `arg:"" help:"Verse file" type:"existingfile"`
}

func (c *FixturesCmd) Run(g *Globals, out io.Writer) error {
	_, s, err := g.setup()
	if err != nil {
		return err
	}
	defer applog.Close()
	verses, err := scansion.LoadVerses(c.Input)
	if err != nil {
		return err
	}
	lines := make([]*scansion.Line, len(verses))
	for i, v := range verses {
		lines[i] = s.ScanLine(v.Text, false)
	}
	return scansion.WriteFixtures(out, lines)
}

// CheckCmd runs a fixture file and fails when any entry does not match.
type CheckCmd struct {
	Fixtures string `arg:"" help:"JSON-lines fixture file" type:"existingfile"`
	Verbose  bool   `short:"v" help:"Also list passing entries"`
}

func (c *CheckCmd) Run(g *Globals, out io.Writer) error {
	_, s, err := g.setup()
	if err != nil {
		return err
	}
	defer applog.Close()
	f, err := os.Open(c.Fixtures)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	rep, err := s.RunFixtures(f)
	if err != nil {
		return err
	}
	for _, res := range rep.Results {
		if c.Verbose || !res.Passed() {
			fmt.Fprintln(out, res)
		}
	}
	fmt.Fprintf(out, "%d passed, %d failed, %d errors\n", rep.Passed, rep.Failed, rep.Errors)
	if !rep.OK() {
		return errCheckFailed
	}
	return nil
}

// RunsCmd lists runs in the store, or the lines of one run.
type RunsCmd struct {
	ID   string `arg:"" optional:"" help:"Run id to show"`
	DB   string `name:"db" help:"SQLite database (default from config)" type:"path"`
	Line string `name:"line" help:"Show every stored scansion of this line instead"`
}

func (c *RunsCmd) Run(g *Globals, out io.Writer) error {
	cfg, _, err := g.setup()
	if err != nil {
		return err
	}
	defer applog.Close()
	dbPath := cfg.Store.Path
	if c.DB != "" {
		dbPath = c.DB
	}
	if dbPath == "" {
		return errors.New("no database: pass --db or set store.path")
	}
	ctx := context.Background()
	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	switch {
	case c.Line != "":
		recs, err := st.History(ctx, c.Line)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.RunID, r.Feet, r.Stresses)
		}
	case c.ID != "":
		recs, err := st.Lines(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			if _, err := st.GetRun(ctx, c.ID); err != nil {
				return err
			}
		}
		for _, r := range recs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Number, r.Feet, r.Stresses, r.Raw)
		}
	default:
		runs, err := st.Runs(ctx)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Scanned, r.Lines, r.Source)
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	fmt.Fprintf(out, "scansion %s\n", version.String())
	return nil
}

func options(out io.Writer) []kong.Option {
	return []kong.Option{
		kong.Name("scansion"),
		kong.Description("Latin dactylic hexameter scansion and diagrams"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.BindTo(out, (*io.Writer)(nil)),
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, options(os.Stdout)...)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
