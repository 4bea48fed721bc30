package mcts

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/awalterschulze/gographviz"
	"github.com/gorgonia/weiqi/game"
)

type dotNode struct {
	*Node
	Move string
}

// ToDot renders the visited part of the tree in the DOT language. namer names the action leading to each node.
func (t *MCTS) ToDot(namer func(game.Single) string) string {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		panic(err)
	}
	g.SetDir(true)

	var buf bytes.Buffer
	addNode := func(n *Node, move string) string {
		tmpl.Execute(&buf, dotNode{Node: n, Move: move})
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		}
		buf.Reset()
		name := fmt.Sprintf("%d", n.id)
		g.AddNode("G", name, attrs)
		return name
	}

	type item struct {
		n    *Node
		name string
	}
	root := t.Root()
	queue := []item{{root, addNode(root, "root")}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.n.IsLeaf() {
			continue
		}
		for a, kid := range it.n.children {
			if !kid.isValid() {
				continue
			}
			child := t.nodeFromNaughty(kid)
			if child.Visits() == 0 {
				continue
			}
			name := addNode(child, namer(game.Single(a)))
			g.AddEdge(it.name, name, true, nil)
			queue = append(queue, item{child, name})
		}
	}
	return g.String()
}

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Node ID</TD><TD>{{.ID}}</TD></TR>
<TR><TD>Move</TD><TD>{{.Move}}</TD></TR>
<TR><TD>Visits</TD><TD>{{.Visits}}</TD></TR>
<TR><TD>Prior</TD><TD>{{printf "%.3f" .Prior}}</TD></TR>
<TR><TD>Mean</TD><TD>{{printf "%.3f" .Mean}}</TD></TR>
</TABLE>
>
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("name").Parse(tmplRaw))
}
