package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Pmariak1013/GraphVisualizer/pkg/engine"
)

var statusOK = StatusResult{Status: "ok"}

type Service struct {
	engine *engine.Engine
}

func NewService(eng *engine.Engine) *Service {
	return &Service{engine: eng}
}

// --- Tool Handlers ---

func (s *Service) AddNode(ctx context.Context, req *mcp.CallToolRequest, args NodeArgs) (*mcp.CallToolResult, StatusResult, error) {
	if err := s.engine.AddNode(args.Key); err != nil {
		return nil, StatusResult{}, err
	}
	return nil, statusOK, nil
}

func (s *Service) RemoveNode(ctx context.Context, req *mcp.CallToolRequest, args NodeArgs) (*mcp.CallToolResult, StatusResult, error) {
	if err := s.engine.RemoveNode(args.Key); err != nil {
		return nil, StatusResult{}, err
	}
	return nil, statusOK, nil
}

func (s *Service) AddEdge(ctx context.Context, req *mcp.CallToolRequest, args EdgeArgs) (*mcp.CallToolResult, StatusResult, error) {
	if err := s.engine.AddEdge(args.A, args.B); err != nil {
		return nil, StatusResult{}, err
	}
	return nil, statusOK, nil
}

func (s *Service) RemoveEdge(ctx context.Context, req *mcp.CallToolRequest, args EdgeArgs) (*mcp.CallToolResult, StatusResult, error) {
	if err := s.engine.RemoveEdge(args.A, args.B); err != nil {
		return nil, StatusResult{}, err
	}
	return nil, statusOK, nil
}

func (s *Service) SetColor(ctx context.Context, req *mcp.CallToolRequest, args SetColorArgs) (*mcp.CallToolResult, StatusResult, error) {
	if err := s.engine.SetColor(args.Key, args.Color); err != nil {
		return nil, StatusResult{}, err
	}
	return nil, statusOK, nil
}

func (s *Service) ClearGraph(ctx context.Context, req *mcp.CallToolRequest, args EmptyArgs) (*mcp.CallToolResult, StatusResult, error) {
	if err := s.engine.Clear(); err != nil {
		return nil, StatusResult{}, err
	}
	return nil, statusOK, nil
}

// GetGraph returns the graph with every node's effective color, defaults included.
func (s *Service) GetGraph(ctx context.Context, req *mcp.CallToolRequest, args EmptyArgs) (*mcp.CallToolResult, GraphResult, error) {
	snap := s.engine.Snapshot()

	res := GraphResult{
		Nodes:  snap.Nodes,
		Edges:  make([][]string, 0, len(snap.Edges)),
		Colors: make(map[string]string, len(snap.Nodes)),
	}
	if res.Nodes == nil {
		res.Nodes = []string{}
	}
	for _, e := range snap.Edges {
		res.Edges = append(res.Edges, []string{e.A, e.B})
	}
	for _, n := range snap.Nodes {
		res.Colors[n] = snap.ColorOf(n)
	}
	return nil, res, nil
}

func (s *Service) SaveGraph(ctx context.Context, req *mcp.CallToolRequest, args SaveGraphArgs) (*mcp.CallToolResult, SaveGraphResult, error) {
	if args.Name == "" {
		if err := s.engine.Save(); err != nil {
			return nil, SaveGraphResult{}, err
		}
		return nil, SaveGraphResult{Path: s.engine.SourceName()}, nil
	}

	if err := engine.CheckLocalName(args.Name); err != nil {
		return nil, SaveGraphResult{}, err
	}
	path, err := s.engine.SaveAs(args.Name)
	if err != nil {
		return nil, SaveGraphResult{}, err
	}
	return nil, SaveGraphResult{Path: path}, nil
}
