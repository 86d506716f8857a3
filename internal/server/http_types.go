package server

import "github.com/Pmariak1013/GraphVisualizer/pkg/layout"

// NodeRequest defines the body for node creation.
type NodeRequest struct {
	Key string `json:"key"`
}

// EdgeRequest defines the body for edge creation and removal.
type EdgeRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// ColorRequest defines the body for setting a node color.
type ColorRequest struct {
	Color string `json:"color"`
}

// FileRequest names a graph file for save-as and load.
type FileRequest struct {
	Name string `json:"name"`
}

// LayoutResponse carries one position and one color for every node.
type LayoutResponse struct {
	Positions map[string]layout.Point `json:"positions"`
	Colors    map[string]string       `json:"colors"`
}

// StatusResponse is the body of successful commands without a payload.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}
