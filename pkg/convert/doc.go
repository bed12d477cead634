// Package convert builds interchange documents from diagram snapshots and
// diagram snapshots from interchange documents.
//
// [Export] is total: any diagram converts, with unsupported element types
// degraded to generic classes and each degradation recorded in a warnings
// list. [Import] mirrors that contract on the way back: unknown classes
// fall back to mode-generic diagram types, unresolvable port references
// fall back through pattern extraction to the raw id, and nodes without
// positions are auto-placed.
//
// The two coordinate systems meet here as well: documents use larger
// units with the vertical axis increasing upward, the canvas uses
// pixel-like units increasing downward. [Space] holds the per-call
// scale/offset mapping; [Space.ToCanvas] and [Space.FromCanvas] are exact
// inverses of each other.
package convert
