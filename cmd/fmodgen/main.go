package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/fmodgen"
	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/emit"
	"github.com/wippyai/fmodgen/header"
	"github.com/wippyai/fmodgen/linker"
	"github.com/wippyai/fmodgen/manifest"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	fileStyle  = lipgloss.NewStyle().Bold(true)
)

// printer writes to w, styling output only when w is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(f *os.File) *printer {
	return &printer{w: f, styled: term.IsTerminal(int(f.Fd()))}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func main() {
	var (
		sdk          = flag.String("sdk", "", "FMOD SDK root directory")
		manifestFile = flag.String("manifest", "", "Corpus manifest (default: built-in FMOD layout)")
		outDir       = flag.String("out", "fmod", "Output directory")
		pkg          = flag.String("package", "", "Go package name (overrides the manifest)")
		check        = flag.Bool("check", false, "Compare with the files in -out and exit 1 on drift")
		list         = flag.Bool("list", false, "List linked declarations and exit")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
		verbose      = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *sdk == "" {
		fmt.Fprintln(os.Stderr, "Usage: fmodgen -sdk <dir> [-manifest file.yaml] [-out dir] [-package name]")
		fmt.Fprintln(os.Stderr, "       fmodgen -sdk <dir> -check   (exit 1 when -out is stale)")
		fmt.Fprintln(os.Stderr, "       fmodgen -sdk <dir> -list")
		fmt.Fprintln(os.Stderr, "       fmodgen -sdk <dir> -i  (interactive mode)")
		os.Exit(1)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	fmodgen.SetLogger(log)
	header.SetLogger(log)
	linker.SetLogger(log)
	emit.SetLogger(log)

	stderr := newPrinter(os.Stderr)
	m, err := loadManifest(*manifestFile, *pkg)
	if err != nil {
		report(stderr, err)
		os.Exit(1)
	}

	outs, model, err := fmodgen.Generate(m, fmodgen.FSLoader(os.DirFS(*sdk)))
	if *interactive && model != nil {
		if err := runInteractive(model, err); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err != nil {
		report(stderr, err)
		os.Exit(1)
	}

	stdout := newPrinter(os.Stdout)
	switch {
	case *list:
		listDeclarations(stdout, model)
	case *check:
		drift, err := checkOutputs(stdout, *outDir, outs)
		if err != nil {
			report(stderr, err)
			os.Exit(1)
		}
		if drift {
			os.Exit(1)
		}
		stdout.printf("%s\n", stdout.render(okStyle, *outDir+" is up to date"))
	default:
		if err := writeOutputs(*outDir, outs); err != nil {
			report(stderr, err)
			os.Exit(1)
		}
		stdout.printf("wrote %d files to %s\n", len(outs), *outDir)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadManifest(path, pkg string) (*manifest.Manifest, error) {
	m := manifest.Default()
	if path != "" {
		var err error
		if m, err = manifest.Load(path); err != nil {
			return nil, err
		}
	}
	if pkg != "" {
		m.Package = pkg
	}
	return m, nil
}

// report prints every collected error on its own line.
func report(p *printer, err error) {
	errs := multierr.Errors(err)
	for _, e := range errs {
		p.printf("%s %v\n", p.render(errorStyle, "error:"), e)
	}
	if len(errs) > 1 {
		p.printf("%d errors\n", len(errs))
	}
}

func listDeclarations(p *printer, model *linker.Model) {
	var current *decl.File
	_ = model.Walk(func(f *decl.File, d decl.Declaration) error {
		if f != current {
			current = f
			p.printf("%s (%s)\n", p.render(fileStyle, f.Path), f.Dialect)
		}
		p.printf("  %s %s\n", p.render(kindStyle, fmt.Sprintf("%-13s", d.Kind())), d.DeclName())
		return nil
	})
}

func writeOutputs(dir string, outs []emit.Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, o := range outs {
		if err := os.WriteFile(filepath.Join(dir, o.Name), o.Source, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.Name, err)
		}
	}
	return nil
}
