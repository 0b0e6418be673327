// Package report renders the links present in a loaded package tree as
// "<path> -> <target>" lines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/agentx-labs/pkglink/internal/tree"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Pair is one link: the node's path and the path of the node it resolves to.
type Pair struct {
	Path   string `json:"path"`
	Target string `json:"target"`
}

// Links returns a Pair for every inventory node with a target, ordered by
// package id using English collation.
func Links(t *tree.Tree) []Pair {
	nodes := make([]*tree.Node, len(t.Inventory))
	copy(nodes, t.Inventory)

	c := collate.New(language.English)
	sort.SliceStable(nodes, func(i, j int) bool {
		return c.CompareString(nodes[i].PkgID(), nodes[j].PkgID()) < 0
	})

	var pairs []Pair
	for _, n := range nodes {
		if n.Target != nil {
			pairs = append(pairs, Pair{Path: n.Path, Target: n.Target.Path})
		}
	}
	return pairs
}

// Write prints one "<path> -> <target>" line per pair.
func Write(w io.Writer, pairs []Pair) error {
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "%s -> %s\n", p.Path, p.Target); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON prints the pairs as an indented JSON array.
func WriteJSON(w io.Writer, pairs []Pair) error {
	if pairs == nil {
		pairs = []Pair{}
	}
	out, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling links: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// Printer reports a tree's links to Out, as text or JSON.
type Printer struct {
	Out  io.Writer
	JSON bool
}

// Report writes the links of t.
func (p *Printer) Report(t *tree.Tree) error {
	pairs := Links(t)
	if p.JSON {
		return WriteJSON(p.Out, pairs)
	}
	return Write(p.Out, pairs)
}
