// Package html renders a report display tree as an HTML fragment.
package html

import (
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/report"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CSS classes emitted for each display node kind.
const (
	ClassReport       = "report"
	ClassHeading      = "report-heading"
	ClassBlock        = "report-block"
	ClassSpacer       = "report-spacer"
	ClassBullet       = "report-bullet"
	ClassBulletMarker = "report-bullet-marker"
	ClassSubject      = "report-subject"
	ClassSubjectLabel = "report-subject-label"
	ClassField        = "report-field"
	ClassFieldLabel   = "report-field-label"
	ClassFieldValue   = "report-field-value"
	ClassHighPriority = "hot"
	ClassParagraph    = "report-paragraph"
)

// Render writes root as HTML to w. All text is escaped.
func Render(w io.Writer, root *report.Node) error {
	if root == nil {
		return goerr.New("report node is nil")
	}

	if err := html.Render(w, build(root)); err != nil {
		return goerr.Wrap(err, "failed to render report html")
	}
	return nil
}

// Node converts a display tree into an html.Node tree.
func Node(root *report.Node) *html.Node {
	return build(root)
}

func build(n *report.Node) *html.Node {
	switch n.Kind {
	case report.NodeReport:
		return element(atom.Div, ClassReport, children(n)...)

	case report.NodeHeading:
		return element(atom.H3, ClassHeading, text(n.Text))

	case report.NodeBlock:
		return element(atom.Div, ClassBlock, children(n)...)

	case report.NodeSpacer:
		return element(atom.Div, ClassSpacer)

	case report.NodeBullet:
		return element(atom.Div, ClassBullet,
			element(atom.Span, ClassBulletMarker, text("•")),
			element(atom.Span, "", text(n.Text)),
		)

	case report.NodeSubject:
		return element(atom.Div, ClassSubject,
			element(atom.Span, ClassSubjectLabel, text(n.Label)),
			text(" "+n.Text),
		)

	case report.NodeField:
		valueClass := ClassFieldValue
		if n.Highlight {
			valueClass += " " + ClassHighPriority
		}
		return element(atom.P, ClassField,
			element(atom.Span, ClassFieldLabel, text(n.Label+":")),
			element(atom.Span, valueClass, text(n.Value)),
		)

	default:
		return element(atom.P, ClassParagraph, text(n.Text))
	}
}

func children(n *report.Node) []*html.Node {
	out := make([]*html.Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, build(c))
	}
	return out
}

func element(a atom.Atom, class string, kids ...*html.Node) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	if class != "" {
		node.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	for _, k := range kids {
		node.AppendChild(k)
	}
	return node
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
