// Package graph is the boundary to an upstream framework's tokenizer
// graph (spec §6): for each recognized source node kind, a Translator
// builds the corresponding operator subgraph, supplying attributes and
// rewiring inputs. Exact framework integration is out of scope (spec §1);
// this package exposes only the pattern-match table shape.
package graph

import (
	"fmt"

	"github.com/openvino-tokenizers/tokengraph/operator"
)

// SourceNode is the minimal description of an upstream framework node a
// Translator needs: its kind tag, its attribute bag, and the names of its
// input edges (resolved against already-translated operators by the
// caller's own graph-building context).
type SourceNode struct {
	Kind       string
	Attributes map[string]any
	Inputs     []string
}

// Translator builds the operator subgraph for one recognized source node
// kind and reports the output edge names it produces.
type Translator func(node SourceNode) (ops []operator.Operator, outputs []string, err error)

// Table is a pattern-match dispatch table keyed by SourceNode.Kind, the
// shape spec §6 asks for in place of a full framework-graph rewriter.
type Table map[string]Translator

// ErrUnrecognizedNodeKind is returned by Translate for a node kind with no
// registered Translator.
var ErrUnrecognizedNodeKind = fmt.Errorf("graph: unrecognized source node kind")

// Translate dispatches node to its registered Translator.
func (t Table) Translate(node SourceNode) ([]operator.Operator, []string, error) {
	fn, ok := t[node.Kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnrecognizedNodeKind, node.Kind)
	}
	return fn(node)
}

// Register adds or replaces the Translator for kind.
func (t Table) Register(kind string, fn Translator) {
	t[kind] = fn
}

// NewTable returns an empty dispatch table; callers register the
// recognized source node kinds named in spec §6 (sentencepiece encode,
// regex split with offsets, wordpiece with offsets, lookup table find,
// reshape, const) with their own Translator implementations, since the
// concrete upstream node schema is outside this module's scope.
func NewTable() Table {
	return make(Table)
}
