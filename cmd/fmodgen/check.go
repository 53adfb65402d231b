package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/wippyai/fmodgen/emit"
)

var (
	addStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	delStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// generatedHeader is the Go convention for marking generated files.
var generatedHeader = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// checkOutputs compares outs with the files in dir and prints a line diff
// for every file that differs. A missing file counts as empty. Generated Go
// files in dir that outs no longer contain are reported as stale.
func checkOutputs(p *printer, dir string, outs []emit.Output) (bool, error) {
	stale, err := staleOutputs(dir, outs)
	if err != nil {
		return false, err
	}
	drift := len(stale) > 0
	for _, path := range stale {
		p.printf("%s\n", p.render(delStyle, "stale generated file "+path))
	}

	for _, o := range outs {
		path := filepath.Join(dir, o.Name)
		current, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		if string(current) == string(o.Source) {
			continue
		}
		drift = true
		p.printf("--- %s\n+++ %s (generated)\n", path, path)
		for _, line := range diffLines(string(current), string(o.Source)) {
			switch line[0] {
			case '+':
				p.printf("%s\n", p.render(addStyle, line))
			case '-':
				p.printf("%s\n", p.render(delStyle, line))
			}
		}
	}
	return drift, nil
}

// staleOutputs lists the generated Go files of dir that are not in outs.
// Files without the generated-code header are left alone.
func staleOutputs(dir string, outs []emit.Output) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	want := make(map[string]bool, len(outs))
	for _, o := range outs {
		want[o.Name] = true
	}

	var stale []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || want[name] || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		first, _, _ := strings.Cut(string(src), "\n")
		if generatedHeader.MatchString(strings.TrimSuffix(first, "\r")) {
			stale = append(stale, path)
		}
	}
	return stale, nil
}

// diffLines returns the changed lines between before and after, prefixed with
// "-" or "+", in file order.
func diffLines(before, after string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return out
}
