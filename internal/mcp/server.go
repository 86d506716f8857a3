package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Pmariak1013/GraphVisualizer/pkg/engine"
)

// NewMCPServer exposes the graph operations of eng as MCP tools.
func NewMCPServer(eng *engine.Engine, version string) *mcp.Server {
	service := NewService(eng)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "Graph Visualizer",
		Version: version,
	}, nil) // Options can be nil for default

	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_node",
		Description: "Add a node to the graph. Adding an existing node does nothing.",
	}, service.AddNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "remove_node",
		Description: "Remove a node together with its edges and color.",
	}, service.RemoveNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_edge",
		Description: "Connect two existing, distinct nodes with an undirected edge.",
	}, service.AddEdge)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "remove_edge",
		Description: "Remove the edge between two nodes if it exists.",
	}, service.RemoveEdge)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "set_color",
		Description: "Set the display color of an existing node.",
	}, service.SetColor)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "clear_graph",
		Description: "Remove every node, edge and color from the in-memory graph. The graph file is not touched.",
	}, service.ClearGraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_graph",
		Description: "Return all nodes, edges and the effective color of every node.",
	}, service.GetGraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "save_graph",
		Description: "Write the graph to disk, either to the default file or to the given name.",
	}, service.SaveGraph)

	return s
}
