// Package aggregates owns transaction boundaries for multi-row writes and
// maps driver failures onto domain/aggregates error codes.
package aggregates
