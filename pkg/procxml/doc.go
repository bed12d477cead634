// Package procxml reads and writes the current interchange dialect.
//
// The entire schema is one recursive grammar of three shapes: a typed
// [Object] (id + type + children), a named [Data] leaf wrapping either a
// nested Object or one scalar (string, double, boolean), and a named
// [Components] list of ordered sibling Objects. Steps, ports, connections,
// parameters, stream properties, layout, and metadata are all instances of
// this grammar, handled by a single encoder/decoder pair.
//
// [Encode] renders a document as indented XML with a declaration and a
// namespace/version-stamped ProcessInterchange root. [Parse] reads such a
// document back, tolerating the casing drift real producers exhibit: every
// named lookup tries the exact spelling, the fully lowercase spelling, and
// the lower-first-letter spelling. A flattened dot-notation property
// encoding (a leaf named "layout.x") is accepted as a fallback when the
// nested Layout object is absent.
//
// Malformed XML, a wrong root, or a missing ProcessModel object abort
// parsing; every other defect degrades into a warning or an absent field.
package procxml
