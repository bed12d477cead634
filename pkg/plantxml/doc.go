// Package plantxml reads the legacy 1.x interchange dialect and detects
// which dialect a document is written in.
//
// Legacy documents use a PlantModel root holding plant-information
// metadata, Equipment elements (with nested Nozzle connection points and
// GenericAttribute values), and PipingNetworkSystem elements (with
// Connection pairs and BoundaryConnector elements for streams crossing the
// battery limit). [Parse] converts all of this into the same document model
// the current dialect uses, so the import builder never needs to know which
// dialect a document came from.
//
// The dialect has no diagram-mode field. Classification prefers the root's
// Discipline attribute; without one, the presence of nozzles or detailed
// equipment classes implies a P&ID, and anything else a block diagram. The
// heuristic is approximate by nature and is reported as a warning.
package plantxml
