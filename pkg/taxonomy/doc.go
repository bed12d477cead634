// Package taxonomy maps between the three type vocabularies of the
// converter: the diagram's own element types ("reactor", "pump"), the
// current interchange schema's class names ("Reactor", "Pump"), and the
// legacy 1.x equipment-class names ("StirredTankReactor",
// "CentrifugalPump").
//
// All tables are immutable module-scope maps with pure lookup functions.
// Lookups never fail: reverse resolution falls through exact match →
// case-insensitive match → a per-mode generic fallback (a bare process step
// for block diagrams, a generic vessel otherwise), and callers record a
// warning when the fallback fires.
//
// The set of legal element types per mode — and the element types per
// rendering category — is an externally owned table ([Config]) loaded from
// TOML, with an embedded default. Rendering categories and symbol variant
// indices serve detailed (pid) rendering only.
package taxonomy
