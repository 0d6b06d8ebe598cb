package report

type NodeKind string

const (
	NodeReport    NodeKind = "report"
	NodeHeading   NodeKind = "heading"
	NodeBlock     NodeKind = "block"
	NodeSpacer    NodeKind = "spacer"
	NodeBullet    NodeKind = "bullet"
	NodeSubject   NodeKind = "subject"
	NodeField     NodeKind = "field"
	NodeParagraph NodeKind = "paragraph"
)

// SubjectLabel prefixes outreach subject lines.
const SubjectLabel = "SUBJ:"

// Node is an element of the display tree.
type Node struct {
	Kind      NodeKind `json:"kind"`
	Text      string   `json:"text,omitempty"`
	Label     string   `json:"label,omitempty"`
	Value     string   `json:"value,omitempty"`
	Highlight bool     `json:"highlight,omitempty"`
	Children  []*Node  `json:"children,omitempty"`
}

// Render maps segments to a display tree. Every segment becomes exactly one
// child of the root and every line of a content segment exactly one
// grandchild.
func Render(segments []Segment) *Node {
	root := &Node{
		Kind:     NodeReport,
		Children: make([]*Node, 0, len(segments)),
	}

	for _, seg := range segments {
		root.Children = append(root.Children, renderSegment(seg))
	}

	return root
}

// Build segments text and renders the result.
func Build(text string, opts ...Option) *Node {
	return Render(NewSegmenter(opts...).Segment(text))
}

func renderSegment(seg Segment) *Node {
	if seg.Kind == SegmentHeader {
		return &Node{Kind: NodeHeading, Text: seg.Text}
	}

	block := &Node{
		Kind:     NodeBlock,
		Children: make([]*Node, 0, len(seg.Lines)),
	}
	for _, l := range seg.Lines {
		block.Children = append(block.Children, renderLine(l))
	}
	return block
}

func renderLine(l Line) *Node {
	switch l.Kind {
	case LineSpacer:
		return &Node{Kind: NodeSpacer}
	case LineBullet:
		return &Node{Kind: NodeBullet, Text: l.Text}
	case LineSubject:
		return &Node{Kind: NodeSubject, Label: SubjectLabel, Text: l.Text}
	case LineKeyValue:
		return &Node{Kind: NodeField, Label: l.Label, Value: l.Value, Highlight: l.HighPriority}
	default:
		return &Node{Kind: NodeParagraph, Text: l.Text}
	}
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
