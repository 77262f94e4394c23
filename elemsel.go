// Package elemsel extracts policy-filtered plain text from parsed HTML
// documents. Subtrees are kept or dropped according to configured lists of
// CSS-like selectors (element type, id, class, attribute=value and their
// compounds), and the surviving structure is flattened into normalized text
// for downstream indexing.
//
// This package contains domain types, interfaces and the selector engine.
// Implementations of external collaborators live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, http/).
package elemsel
