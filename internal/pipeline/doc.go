// Package pipeline holds the Markdown-side stages that surround the
// HTML-to-Markdown transducer:
//   - URL normalization and tracking-parameter removal
//   - Parsing of selections and article fragments into node trees
//   - Table of contents generation from ATX headings
//   - Final cleanup of invisible characters and blank-line runs
//   - HTML preview rendering via Goldmark
//
// The transducer itself lives in internal/htmlmd. This package only deals
// with strings and node trees before and after it runs.
package pipeline
