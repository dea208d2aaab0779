// Package repair turns raw LLM text into JSON candidates.
//
// Repair never fails: its worst case is the empty-object sentinel "{}",
// which downstream stages treat as "no data". Parse layers a real JSON
// decode on top and reports failures as a typed *ParseError instead of
// swallowing them.
//
// Every step of Repair is idempotent, so Repair(Repair(s)) == Repair(s).
//
// Known limitation: dangling commas are only removed when the closing
// bracket is on the same line. A comma at the end of one line followed by
// "}" on the next is left alone.
package repair
