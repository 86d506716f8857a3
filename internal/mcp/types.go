package mcp

// --- Tool Arguments ---

type NodeArgs struct {
	Key string `json:"key" jsonschema:"The node key, any non-empty string"`
}

type EdgeArgs struct {
	A string `json:"a" jsonschema:"Key of the first endpoint"`
	B string `json:"b" jsonschema:"Key of the second endpoint"`
}

type SetColorArgs struct {
	Key   string `json:"key" jsonschema:"The node to annotate"`
	Color string `json:"color" jsonschema:"A color name or hex value (e.g. 'red', '#ff0000')"`
}

type SaveGraphArgs struct {
	Name string `json:"name,omitempty" jsonschema:"Optional file name. Empty saves to the default graph file"`
}

type EmptyArgs struct{}

// --- Tool Results ---

type StatusResult struct {
	Status string `json:"status"`
}

type GraphResult struct {
	Nodes  []string          `json:"nodes"`
	Edges  [][]string        `json:"edges"`
	Colors map[string]string `json:"colors"`
}

type SaveGraphResult struct {
	Path string `json:"path"`
}
