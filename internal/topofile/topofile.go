// Package topofile reads pipeline topologies from Graphviz DOT files.
//
// Every node is a filter sleeping for the duration in its "work" attribute, or for the default
// work when the attribute is missing. Every edge is a link, in definition order:
//
//	digraph logic {
//	    Filter1 [work="5s"];
//	    Filter1 -> Filter2;
//	    Filter1 -> Filter3;
//	}
package topofile

import (
	"os"
	"strings"
	"time"

	gographviz "github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"

	"github.com/askiada/go-filterchain/pkg/pipeline"
)

// WorkAttr is the node attribute holding the work duration of a filter.
const WorkAttr = "work"

// ParseFile reads and parses the DOT file at path.
func ParseFile(path string, defaultWork time.Duration) (*pipeline.Topology, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}

	topo, err := Parse(string(src), defaultWork)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse %s", path)
	}

	return topo, nil
}

// Parse builds a topology from a DOT digraph.
func Parse(src string, defaultWork time.Duration) (*pipeline.Topology, error) {
	graphAst, err := gographviz.ParseString(src)
	if err != nil {
		return nil, errors.Wrap(err, "dot parse error")
	}

	collector := newCollector()
	if err := gographviz.Analyse(graphAst, collector); err != nil {
		return nil, errors.Wrap(err, "dot analyse error")
	}
	if !collector.directed {
		return nil, errors.New("topology must be a digraph")
	}

	topo := pipeline.NewTopology()
	for _, name := range collector.order {
		work := defaultWork
		if raw, ok := collector.nodes[name][WorkAttr]; ok {
			work, err = time.ParseDuration(raw)
			if err != nil {
				return nil, errors.Wrapf(err, "filter %s: invalid %s attribute", name, WorkAttr)
			}
		}

		err := topo.AddFilter(pipeline.SleepFilter(name, work))
		if err != nil {
			return nil, err
		}
	}

	for _, e := range collector.edges {
		err := topo.Link(e.from, e.to)
		if err != nil {
			return nil, err
		}
	}

	if err := topo.Validate(); err != nil {
		return nil, err
	}

	return topo, nil
}

type rawEdge struct {
	from, to string
}

// collector implements gographviz.Interface without attribute validation.
type collector struct {
	name     string
	directed bool
	nodes    map[string]map[string]string
	order    []string
	edges    []rawEdge
}

func newCollector() *collector {
	return &collector{
		nodes: make(map[string]map[string]string),
	}
}

func (c *collector) SetStrict(_ bool) error { return nil }

func (c *collector) SetDir(directed bool) error {
	c.directed = directed

	return nil
}

func (c *collector) SetName(n string) error {
	c.name = unquote(n)

	return nil
}

func (c *collector) String() string { return c.name }

func (c *collector) AddNode(_ string, name string, attrs map[string]string) error {
	id := c.node(name)
	for k, v := range attrs {
		c.nodes[id][k] = unquote(v)
	}

	return nil
}

func (c *collector) AddEdge(src, dst string, _ bool, _ map[string]string) error {
	c.edges = append(c.edges, rawEdge{from: c.node(src), to: c.node(dst)})

	return nil
}

func (c *collector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *collector) AddAttr(_ string, _, _ string) error { return nil }

func (c *collector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// node registers name when it is seen for the first time and returns its id.
func (c *collector) node(name string) string {
	id := unquote(name)
	if _, ok := c.nodes[id]; !ok {
		c.nodes[id] = make(map[string]string)
		c.order = append(c.order, id)
	}

	return id
}

// unquote strips surrounding double-quotes from a DOT identifier or attribute value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}

	return s
}
