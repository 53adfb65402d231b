package emit

import "testing"

func TestBuffer_Lines(t *testing.T) {
	tests := []struct {
		name  string
		write func(b *buffer)
		want  string
	}{
		{"formatted", func(b *buffer) { b.line("const %s = %d", "A", 1) }, "const A = 1\n"},
		{"constant_format", func(b *buffer) { b.line("}") }, "}\n"},
		{"raw_keeps_verbs", func(b *buffer) { b.raw(`fmt.Errorf("load %s: %w", name, err)`) }, "fmt.Errorf(\"load %s: %w\", name, err)\n"},
		{"blank", func(b *buffer) { b.blank() }, "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuffer()
			tt.write(b)
			if got := b.body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuffer_Source(t *testing.T) {
	b := newBuffer()
	b.use(importFFI)
	b.use("unsafe")
	b.raw("var _ = ffi.TypeVoid")

	want := "// header\n\npackage fmod\n\nimport (\n\t\"unsafe\"\n\n\t\"github.com/jupiterrider/ffi\"\n)\n\nvar _ = ffi.TypeVoid\n"
	if got := string(b.source("// header", "fmod")); got != want {
		t.Errorf("source = %q, want %q", got, want)
	}
}
