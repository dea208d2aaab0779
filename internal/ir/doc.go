// Package ir provides the document model shared by every deckcheck stage.
//
// This package contains type definitions and value helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Documents are loosely-typed JSON (map[string]any / []any) because they
//     are authored by an LLM; typed structure is layered on top (Slide, Row)
//   - Numbers are decoded as json.Number so that values round-trip verbatim;
//     canonical output rewrites them in shortest ECMAScript form
//   - All JSON tags use snake_case
//   - Slide order is presentation order and is never changed
package ir
