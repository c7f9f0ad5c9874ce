// Package render writes graphs as self-contained interactive HTML pages
// backed by the vis-network browser library.
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"slices"
)

var (
	ErrEmptyID       = errors.New("render: node id must not be empty")
	ErrDuplicateNode = errors.New("render: duplicate node id")
	ErrUnknownNode   = errors.New("render: edge references unknown node")
)

const (
	visScriptURL = "https://cdnjs.cloudflare.com/ajax/libs/vis-network/9.1.2/dist/vis-network.min.js"
	visCSSURL    = "https://cdnjs.cloudflare.com/ajax/libs/vis-network/9.1.2/dist/dist/vis-network.min.css"
)

// DefaultPhysics is the forceAtlas2Based layout used for every page.
const DefaultPhysics = `{
  "physics": {
    "forceAtlas2Based": {
      "gravitationalConstant": -100,
      "centralGravity": 0.01,
      "springLength": 200,
      "springConstant": 0.08
    },
    "minVelocity": 0.75,
    "solver": "forceAtlas2Based"
  }
}`

//go:embed templates/network.html
var networkTemplate string

var pageTemplate = template.Must(template.New("network").Parse(networkTemplate))

type visFont struct {
	Color string `json:"color"`
}

type visNode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Title string   `json:"title,omitempty"`
	Group string   `json:"group,omitempty"`
	Shape string   `json:"shape"`
	Font  *visFont `json:"font,omitempty"`
}

type visEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label,omitempty"`
	Arrows string `json:"arrows,omitempty"`
}

// Network collects nodes and edges for one page.
type Network struct {
	height     string
	width      string
	bgColor    string
	fontColor  string
	heading    string
	directed   bool
	filterMenu bool

	nodes   []visNode
	edges   []visEdge
	index   map[string]struct{}
	options map[string]any
}

type NetworkOption func(*Network)

func WithSize(height, width string) NetworkOption {
	return func(n *Network) {
		n.height = height
		n.width = width
	}
}

func WithColors(background, font string) NetworkOption {
	return func(n *Network) {
		n.bgColor = background
		n.fontColor = font
	}
}

func WithHeading(heading string) NetworkOption {
	return func(n *Network) {
		n.heading = heading
	}
}

func WithDirected(directed bool) NetworkOption {
	return func(n *Network) {
		n.directed = directed
	}
}

func WithFilterMenu(enabled bool) NetworkOption {
	return func(n *Network) {
		n.filterMenu = enabled
	}
}

// NewNetwork returns an empty directed network with a dark background,
// white labels, a type filter and the default physics.
func NewNetwork(opts ...NetworkOption) *Network {
	n := &Network{
		height:     "1200px",
		width:      "100%",
		bgColor:    "#222222",
		fontColor:  "white",
		directed:   true,
		filterMenu: true,
		index:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	_ = n.SetOptions(DefaultPhysics)
	return n
}

// AddNode adds a node. id must be unique within the network.
func (n *Network) AddNode(id, label, title, group string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, ok := n.index[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	if label == "" {
		label = id
	}
	n.index[id] = struct{}{}
	n.nodes = append(n.nodes, visNode{
		ID:    id,
		Label: label,
		Title: title,
		Group: group,
		Shape: "dot",
		Font:  &visFont{Color: n.fontColor},
	})
	return nil
}

// AddEdge adds an edge between two nodes that were added before.
func (n *Network) AddEdge(from, to, label string) error {
	if _, ok := n.index[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := n.index[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	e := visEdge{From: from, To: to, Label: label}
	if n.directed {
		e.Arrows = "to"
	}
	n.edges = append(n.edges, e)
	return nil
}

// SetOptions replaces the vis-network options with a JSON document.
func (n *Network) SetOptions(options string) error {
	var o map[string]any
	if err := json.Unmarshal([]byte(options), &o); err != nil {
		return fmt.Errorf("invalid network options: %w", err)
	}
	n.options = o
	return nil
}

// NumNodes returns the number of nodes added so far.
func (n *Network) NumNodes() int {
	return len(n.nodes)
}

// NumEdges returns the number of edges added so far.
func (n *Network) NumEdges() int {
	return len(n.edges)
}

func (n *Network) groups() []string {
	var groups []string
	for _, node := range n.nodes {
		if node.Group != "" && !slices.Contains(groups, node.Group) {
			groups = append(groups, node.Group)
		}
	}
	slices.Sort(groups)
	return groups
}

// Write renders the page to w.
func (n *Network) Write(w io.Writer) error {
	nodes := n.nodes
	if nodes == nil {
		nodes = []visNode{}
	}
	edges := n.edges
	if edges == nil {
		edges = []visEdge{}
	}
	data := map[string]any{
		"Heading":    n.heading,
		"Height":     template.CSS(n.height),
		"Width":      template.CSS(n.width),
		"BgColor":    template.CSS(n.bgColor),
		"FontColor":  template.CSS(n.fontColor),
		"FilterMenu": n.filterMenu,
		"Groups":     n.groups(),
		"Nodes":      nodes,
		"Edges":      edges,
		"Options":    n.options,
		"ScriptURL":  visScriptURL,
		"CSSURL":     visCSSURL,
	}
	return pageTemplate.Execute(w, data)
}

// HTML renders the page into memory.
func (n *Network) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save renders the page to path, creating parent directories as needed.
func (n *Network) Save(path string) error {
	page, err := n.HTML()
	if err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return fmt.Errorf("failed to write graph to %s: %w", path, err)
	}
	return nil
}
