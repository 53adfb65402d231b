package emit

import (
	"bytes"
	"fmt"
	"strings"
)

// buffer accumulates the body of one Go file and the imports it needs.
type buffer struct {
	body    bytes.Buffer
	imports map[string]bool
}

func newBuffer() *buffer {
	return &buffer{imports: make(map[string]bool)}
}

// line writes one formatted line.
func (b *buffer) line(format string, args ...any) {
	fmt.Fprintf(&b.body, format, args...)
	b.body.WriteByte('\n')
}

// raw writes one line verbatim.
func (b *buffer) raw(text string) {
	b.body.WriteString(text)
	b.body.WriteByte('\n')
}

func (b *buffer) blank() {
	b.body.WriteByte('\n')
}

func (b *buffer) use(path string) {
	b.imports[path] = true
}

// source assembles the file: header, package clause, imports, body.
func (b *buffer) source(header, pkg string) []byte {
	var out bytes.Buffer
	out.WriteString(header)
	out.WriteString("\n\npackage ")
	out.WriteString(pkg)
	out.WriteString("\n\n")

	var std, ext []string
	for _, p := range importOrder {
		if !b.imports[p] {
			continue
		}
		if strings.Contains(p, ".") {
			ext = append(ext, p)
		} else {
			std = append(std, p)
		}
	}
	if len(std)+len(ext) > 0 {
		out.WriteString("import (\n")
		for _, p := range std {
			fmt.Fprintf(&out, "\t%q\n", p)
		}
		if len(std) > 0 && len(ext) > 0 {
			out.WriteByte('\n')
		}
		for _, p := range ext {
			fmt.Fprintf(&out, "\t%q\n", p)
		}
		out.WriteString(")\n\n")
	}
	out.Write(b.body.Bytes())
	return out.Bytes()
}

const importFFI = "github.com/jupiterrider/ffi"

var importOrder = []string{"fmt", "path/filepath", "runtime", "unsafe", importFFI}
