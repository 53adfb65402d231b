// Package header translates one C header into its declaration sequence.
//
// Translation is total: it returns either the complete sequence or a single
// error. A grammar failure is a *errors.ParseError carrying the file, line,
// column and the set of expected constructs; no partial sequence is ever
// returned.
package header

import (
	"go.uber.org/zap"

	"github.com/wippyai/fmodgen/decl"
	"github.com/wippyai/fmodgen/errors"
	"github.com/wippyai/fmodgen/header/internal/build"
	"github.com/wippyai/fmodgen/header/internal/grammar"
)

// Translate parses text with the grammar of dialect and builds its
// declarations. path is used for locations only.
func Translate(dialect decl.Dialect, path, text string) (*decl.File, error) {
	g, err := grammar.For(dialect)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, path)
	}
	nodes, err := g.Extract(path, text)
	if err != nil {
		return nil, err
	}
	return build.Build(path, dialect, nodes)
}

// Productions returns the production priority list of a dialect, highest
// priority first.
func Productions(dialect decl.Dialect) ([]string, error) {
	g, err := grammar.For(dialect)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, string(dialect))
	}
	rules := g.Rules()
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = string(r)
	}
	return out, nil
}

// SetLogger configures the logger of the header grammar. It reports
// directives the grammar skips at debug level. A nil logger restores the
// no-op default.
func SetLogger(l *zap.Logger) {
	grammar.SetLogger(l)
}
