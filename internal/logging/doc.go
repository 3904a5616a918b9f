// Package logging builds the slog loggers used across jumpcut.
//
// Two formats are supported: a console handler producing single-line
// "ts LEVEL component: msg key=value" records (level tags are coloured when
// writing to a terminal) and a JSON handler with lowercase levels and RFC3339
// UTC timestamps under the "ts" key.
package logging
