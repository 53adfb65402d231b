package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/emit"
	"github.com/wippyai/fmodgen/header"
	"github.com/wippyai/fmodgen/linker"
)

func TestDiffLines(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   []string
	}{
		{"equal", "a\nb\n", "a\nb\n", nil},
		{"changed_line", "a\nb\nc\n", "a\nB\nc\n", []string{"-b", "+B"}},
		{"appended", "a\n", "a\nb\nc\n", []string{"+b", "+c"}},
		{"from_empty", "", "x\n", []string{"+x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffLines(tt.before, tt.after)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("diffLines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckOutputs(t *testing.T) {
	dir := t.TempDir()
	outs := []emit.Output{
		{Name: "core.go", Source: []byte("package fmod\n\nconst A = 1\n")},
		{Name: "loader.go", Source: []byte("package fmod\n")},
	}
	if err := writeOutputs(dir, outs); err != nil {
		t.Fatalf("writeOutputs failed: %v", err)
	}

	var buf bytes.Buffer
	drift, err := checkOutputs(&printer{w: &buf}, dir, outs)
	if err != nil {
		t.Fatalf("checkOutputs failed: %v", err)
	}
	if drift || buf.Len() != 0 {
		t.Errorf("fresh output reported drift: %s", buf.String())
	}

	outs[0].Source = []byte("package fmod\n\nconst A = 2\n")
	drift, err = checkOutputs(&printer{w: &buf}, dir, outs)
	if err != nil {
		t.Fatalf("checkOutputs failed: %v", err)
	}
	if !drift {
		t.Fatal("changed output not reported")
	}
	for _, want := range []string{"--- " + filepath.Join(dir, "core.go"), "-const A = 1", "+const A = 2"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("diff lacks %q:\n%s", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "loader.go") {
		t.Error("unchanged file reported")
	}

	if err := os.Remove(filepath.Join(dir, "loader.go")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	buf.Reset()
	drift, err = checkOutputs(&printer{w: &buf}, dir, outs[1:])
	if err != nil {
		t.Fatalf("checkOutputs failed: %v", err)
	}
	if !drift || !strings.Contains(buf.String(), "+package fmod") {
		t.Errorf("missing file not reported:\n%s", buf.String())
	}
}

func TestCheckOutputs_Stale(t *testing.T) {
	outs := []emit.Output{{Name: "core.go", Source: []byte("package fmod\n")}}
	tests := []struct {
		name  string
		file  string
		text  string
		drift bool
	}{
		{"stale_generated", "dsp.go", "// Code generated by fmodgen from fmod_dsp.h. DO NOT EDIT.\n\npackage fmod\n", true},
		{"stale_generated_crlf", "dsp.go", "// Code generated by fmodgen from fmod_dsp.h. DO NOT EDIT.\r\n\r\npackage fmod\r\n", true},
		{"handwritten", "doc.go", "// Package fmod binds FMOD.\npackage fmod\n", false},
		{"generated_test", "core_test.go", "// Code generated by fmodgen. DO NOT EDIT.\n\npackage fmod\n", false},
		{"not_go", "notes.txt", "// Code generated by fmodgen. DO NOT EDIT.\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := writeOutputs(dir, outs); err != nil {
				t.Fatalf("writeOutputs failed: %v", err)
			}
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.text), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			var buf bytes.Buffer
			drift, err := checkOutputs(&printer{w: &buf}, dir, outs)
			if err != nil {
				t.Fatalf("checkOutputs failed: %v", err)
			}
			if drift != tt.drift {
				t.Errorf("drift = %v, want %v:\n%s", drift, tt.drift, buf.String())
			}
			if got := strings.Contains(buf.String(), "stale generated file "+path); got != tt.drift {
				t.Errorf("stale report = %v, want %v:\n%s", got, tt.drift, buf.String())
			}
		})
	}

	t.Run("missing_dir", func(t *testing.T) {
		stale, err := staleOutputs(filepath.Join(t.TempDir(), "none"), outs)
		if err != nil || stale != nil {
			t.Errorf("staleOutputs failed: %v, stale %v", err, stale)
		}
	})
}

func TestLoadManifest(t *testing.T) {
	m, err := loadManifest("", "audio")
	if err != nil {
		t.Fatalf("loadManifest failed: %v", err)
	}
	if m.Package != "audio" || len(m.Groups) == 0 {
		t.Errorf("manifest = %+v", m)
	}

	if _, err := loadManifest(filepath.Join(t.TempDir(), "none.yaml"), ""); err == nil {
		t.Error("missing manifest accepted")
	}
}

func TestBrowserFilter(t *testing.T) {
	f, err := header.Translate(decl.CoreCommon, "fmod_common.h", `typedef struct FMOD_SYSTEM FMOD_SYSTEM;
typedef struct FMOD_VECTOR
{
    float x;
} FMOD_VECTOR;
typedef struct FMOD_LISTENER
{
    FMOD_VECTOR position;
    FMOD_SYSTEM *system;
} FMOD_LISTENER;
`)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	model, err := linker.Link([]*decl.File{f})
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	b := newBrowser(model, nil)
	if len(b.visible) != 3 {
		t.Fatalf("visible = %d, want 3", len(b.visible))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"vector", []string{"FMOD_VECTOR"}},
		{"fmodsys", []string{"FMOD_SYSTEM"}},
		{"structure", []string{"FMOD_VECTOR", "FMOD_LISTENER"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			b.filter.SetValue(tt.query)
			b.applyFilter()
			var got []string
			for _, i := range b.visible {
				got = append(got, b.entries[i].name)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("visible = %v, want %v", got, tt.want)
			}
		})
	}

	for _, e := range b.entries {
		if e.name == "FMOD_VECTOR" && (len(e.refs) != 1 || strings.Join(e.refs[0].Path, ".") != "FMOD_LISTENER.position") {
			t.Errorf("FMOD_VECTOR references = %+v", e.refs)
		}
	}
}
