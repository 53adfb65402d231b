// Package grammar holds the dialect grammars and the extractor that drives
// them over one header.
//
// A dialect is an explicit priority list of productions. The extractor tries
// them in order at each position, commits to the first full match and fails
// the whole file when none matches, reporting the furthest position any
// production reached and what was expected there.
package grammar

import (
	"fmt"

	"github.com/wippyai/fmodgen/decl"
)

// Production is one declaration shape. Discarded productions are
// recognised but produce no node.
type Production struct {
	match   func(c *cursor) (*Node, bool)
	Rule    Rule
	Discard bool
}

// Grammar is the production priority list of one dialect.
type Grammar struct {
	Dialect     decl.Dialect
	Excluded    []string
	Productions []Production
}

// Rules returns the production rules in priority order.
func (g *Grammar) Rules() []Rule {
	rules := make([]Rule, len(g.Productions))
	for i, p := range g.Productions {
		rules[i] = p.Rule
	}
	return rules
}

var (
	pLinkage        = Production{Rule: RuleLinkage, Discard: true, match: linkage}
	pOpaqueType     = Production{Rule: RuleOpaqueType, match: opaqueType}
	pStructure      = Production{Rule: RuleStructure, match: structure}
	pEnumeration    = Production{Rule: RuleEnumeration, match: enumeration}
	pFlags          = Production{Rule: RuleFlags, match: flags}
	pTypeAlias      = Production{Rule: RuleTypeAlias, match: typeAlias}
	pCallback       = Production{Rule: RuleCallback, match: callback}
	pFunction       = Production{Rule: RuleFunction, match: function}
	pPreset         = presetProduction
	pConstant       = constantProduction
	pMacros         = macrosProduction
	pDirective      = Production{Rule: RuleDirective, Discard: true, match: directive}
	pErrorMapping   = Production{Rule: RuleErrorMapping, match: errorMapping}
	pErrorPrototype = Production{Rule: RuleErrorPrototype, Discard: true, match: errorPrototype}
)

func list(ps ...Production) []Production { return ps }

var grammars = map[decl.Dialect]*Grammar{
	decl.CoreCommon: {
		Dialect:  decl.CoreCommon,
		Excluded: []string{"FMOD_VERSION"},
		Productions: list(pLinkage, pOpaqueType, pStructure, pEnumeration, pFlags,
			pTypeAlias, pCallback, pPreset, pConstant, pMacros, pDirective),
	},
	decl.CoreOutput: {
		Dialect: decl.CoreOutput,
		Productions: list(pLinkage, pOpaqueType, pStructure, pFlags, pCallback,
			pConstant, pMacros, pDirective),
	},
	decl.CoreCodec: {
		Dialect: decl.CoreCodec,
		Productions: list(pLinkage, pOpaqueType, pStructure, pFlags, pCallback,
			pConstant, pMacros, pDirective),
	},
	decl.CoreDSP: {
		Dialect: decl.CoreDSP,
		Productions: list(pLinkage, pOpaqueType, pStructure, pEnumeration, pFlags,
			pCallback, pConstant, pMacros, pDirective),
	},
	decl.CoreDSPEffects: {
		Dialect: decl.CoreDSPEffects,
		Productions: list(pLinkage, pOpaqueType, pStructure, pEnumeration, pFlags,
			pCallback, pConstant, pMacros, pDirective),
	},
	decl.StudioCommon: {
		Dialect: decl.StudioCommon,
		Productions: list(pLinkage, pOpaqueType, pStructure, pEnumeration, pFlags,
			pCallback, pConstant, pMacros, pDirective),
	},
	decl.Core: {
		Dialect:     decl.Core,
		Productions: list(pLinkage, pFunction, pDirective),
	},
	decl.Studio: {
		Dialect:     decl.Studio,
		Productions: list(pLinkage, pFunction, pDirective),
	},
	decl.ErrorTable: {
		Dialect:     decl.ErrorTable,
		Productions: list(pErrorMapping, pErrorPrototype, pLinkage, pDirective),
	},
}

// For returns the grammar of a dialect.
func For(d decl.Dialect) (*Grammar, error) {
	g, ok := grammars[d]
	if !ok {
		return nil, fmt.Errorf("no grammar for dialect %q", d)
	}
	return g, nil
}

// Extract runs the grammar over src and returns the raw nodes of every
// non-discarded production in source order. The first position no
// production matches aborts the file with a *errors.ParseError.
func (g *Grammar) Extract(file, src string) ([]*Node, error) {
	c := newCursor(file, src, g.Excluded)
	var nodes []*Node
	for !c.done() {
		matched := false
		c.far, c.expected = c.pos, nil
		for _, p := range g.Productions {
			start := c.pos
			n, ok := p.match(c)
			if ok {
				if !p.Discard {
					nodes = append(nodes, n)
				}
				matched = true
				break
			}
			c.pos = start
		}
		if !matched {
			return nil, c.parseError()
		}
	}
	if c.linkage > 0 {
		c.far, c.expected = c.pos, []string{"'}'"}
		return nil, c.parseError()
	}
	return nodes, nil
}
