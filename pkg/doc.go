// Package pkg provides the core libraries for Flowsheet diagram conversion.
//
// # Overview
//
// Flowsheet converts interactive process diagrams (block flow diagrams,
// PFDs, P&IDs) to process-engineering interchange XML and back. The pkg
// directory is organized into five main areas:
//
//  1. [graph] - Diagram snapshot types (nodes, edges, geometry)
//  2. [model] - The neutral process-model document both dialects share
//  3. [taxonomy] - Type mappings between diagram, current, and legacy vocabularies
//  4. [procxml], [plantxml], [xmltree] - Serialization and parsing
//  5. [convert], [pipeline] - Conversion logic and orchestration
//
// # Architecture
//
// The typical data flow through Flowsheet:
//
//	Diagram Snapshot (JSON)
//	         ↓
//	convert.Export → model.Document → procxml.Encode → interchange XML
//
//	interchange XML → plantxml.Detect → procxml/plantxml parser
//	         ↓
//	model.Document → convert.Import → Diagram Snapshot (JSON)
//
// Conversions never fail on content: unsupported types, unknown classes,
// and unresolvable references degrade to generic fallbacks and are
// reported through warning lists. Only malformed XML or an unrecognized
// root element aborts a conversion.
package pkg
