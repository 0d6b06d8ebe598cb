// Package term renders report display trees for the terminal.
package term

import (
	"strings"

	"github.com/m-mizutani/prospector/pkg/report"
)

// Render returns root as styled text, one output line per display line.
func Render(root *report.Node) string {
	if root == nil {
		return ""
	}

	var sb strings.Builder
	for i, n := range root.Children {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch n.Kind {
		case report.NodeHeading:
			sb.WriteString(HeadingStyle.Render(n.Text))
			sb.WriteString("\n")
		default:
			for _, c := range n.Children {
				sb.WriteString(renderLine(c))
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

func renderLine(n *report.Node) string {
	switch n.Kind {
	case report.NodeSpacer:
		return ""
	case report.NodeBullet:
		return "  " + BulletMarkerStyle.Render("•") + " " + n.Text
	case report.NodeSubject:
		return SubjectLabelStyle.Render(n.Label) + " " + SubjectStyle.Render(n.Text)
	case report.NodeField:
		value := FieldValueStyle.Render(n.Value)
		if n.Highlight {
			value = HotValueStyle.Render(n.Value)
		}
		return FieldLabelStyle.Render(strings.ToUpper(n.Label)+":") + " " + value
	default:
		return n.Text
	}
}

// Banner is the report title block.
func Banner(title, subtitle string) string {
	return TitleStyle.Render(title) + "\n" + DimStyle.Render(subtitle) + "\n"
}
