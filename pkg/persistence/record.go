// Package persistence maps graph snapshots to a durable JSON record and back.
//
// A record has the shape
//
//	{
//	    "nodes":  ["A", "B"],
//	    "edges":  [["A", "B"]],
//	    "colors": [["A", "#ff0000"]]
//	}
//
// "colors" may be absent in records written before color support existed; it
// decodes as empty.
package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
)

var (
	// ErrMalformedRecord indicates persisted data that is not a valid record, or
	// whose edges or colors reference nodes the record does not list.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrStorageUnavailable indicates the durable source could not be read or
	// written for a reason other than simple absence.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Record is the durable form of a graph snapshot.
type Record struct {
	Nodes  []string   `json:"nodes"`
	Edges  [][]string `json:"edges"`
	Colors [][]string `json:"colors"`
}

// EmptyRecord returns the record of an empty store.
func EmptyRecord() Record {
	return Record{Nodes: []string{}, Edges: [][]string{}, Colors: [][]string{}}
}

// Encode converts a snapshot into a record. The output follows the snapshot
// order for nodes and edges; colors are sorted by node key.
func Encode(snap graph.Snapshot) Record {
	rec := Record{
		Nodes:  make([]string, 0, len(snap.Nodes)),
		Edges:  make([][]string, 0, len(snap.Edges)),
		Colors: make([][]string, 0, len(snap.Colors)),
	}
	rec.Nodes = append(rec.Nodes, snap.Nodes...)
	for _, e := range snap.Edges {
		rec.Edges = append(rec.Edges, []string{e.A, e.B})
	}
	for _, key := range slices.Sorted(maps.Keys(snap.Colors)) {
		rec.Colors = append(rec.Colors, []string{key, snap.Colors[key]})
	}
	return rec
}

// Decode rebuilds a store from a record: nodes first, then edges, then colors.
// Any entry that would break a store invariant makes the whole record invalid.
func Decode(rec Record) (*graph.Store, error) {
	s := graph.New()

	for i, key := range rec.Nodes {
		if err := s.AddNode(key); err != nil {
			return nil, fmt.Errorf("%w: nodes[%d]: %v", ErrMalformedRecord, i, err)
		}
	}

	for i, pair := range rec.Edges {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: edges[%d]: expected 2 endpoints, got %d", ErrMalformedRecord, i, len(pair))
		}
		if err := s.AddEdge(pair[0], pair[1]); err != nil {
			return nil, fmt.Errorf("%w: edges[%d]: %v", ErrMalformedRecord, i, err)
		}
	}

	for i, pair := range rec.Colors {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: colors[%d]: expected [node, color], got %d values", ErrMalformedRecord, i, len(pair))
		}
		if err := s.SetColor(pair[0], pair[1]); err != nil {
			return nil, fmt.Errorf("%w: colors[%d]: %v", ErrMalformedRecord, i, err)
		}
	}

	return s, nil
}

// Marshal renders a record as indented JSON followed by a newline.
func Marshal(rec Record) ([]byte, error) {
	if rec.Nodes == nil {
		rec.Nodes = []string{}
	}
	if rec.Edges == nil {
		rec.Edges = [][]string{}
	}
	if rec.Colors == nil {
		rec.Colors = [][]string{}
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal parses and structurally validates a record.
func Unmarshal(data []byte) (Record, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedRecord, err)
	}
	schema, err := resolvedRecordSchema()
	if err != nil {
		return Record{}, err
	}
	if err := schema.Validate(raw); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.Colors == nil {
		rec.Colors = [][]string{}
	}
	return rec, nil
}
