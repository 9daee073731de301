// Package aggregates classifies the outcome of a write against the store.
//
// Services wrap persistence failures in *Error so transport code can map them
// without importing driver packages.
package aggregates
