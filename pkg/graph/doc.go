// Package graph defines the diagram graph model and its wire format.
//
// This package holds the canvas-facing representation of a process diagram:
// typed nodes with positions, labels, and free-form properties, and typed
// edges with optional handle names. It is the input of the export direction
// and the output of the import direction.
//
// # Core Types
//
//   - [Snapshot]: one diagram graph (nodes + edges)
//   - [Node], [Edge]: the structural types exchanged with the canvas
//   - [Mode]: diagram detail level (block, pfd, pid)
//
// # Serialization
//
// Snapshots use a plain JSON node-link format:
//
//	{
//	  "nodes": [{"id": "reactor-1", "type": "reactor", "x": 100, "y": 100}],
//	  "edges": [{"id": "e1", "source": "reactor-1", "target": "tank-1", "type": "stream"}]
//	}
//
// Common operations:
//
//	s, _ := graph.ReadSnapshotFile("diagram.json")  // File → Snapshot
//	graph.WriteSnapshotFile(s, "out.json")          // Snapshot → File
//	data, _ := graph.MarshalSnapshot(s)             // Snapshot → []byte
//
// # Node Properties
//
// The properties map carries arbitrary string data. Recognized keys:
//
//	stream     Flow type of an edge: material, energy, utility, information
//	direction  Explicit boundary direction: inlet or outlet
//
// Everything else round-trips into interchange parameters untouched.
package graph
