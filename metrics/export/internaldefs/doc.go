// Package internaldefs holds the metric names, help strings and bucket bounds shared by
// the exporters, so every exporter publishes identical series.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
