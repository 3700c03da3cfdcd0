// Package models defines the core domain models for hauslist.
//
// # Ownership
//
// Every entity here is owned by the remote store. Instances held by the
// client are transient, possibly-stale copies that get reconciled through
// the sync engine; they are never the source of truth.
//
// # Identity and time
//
// IDs are UUID strings, generated by the store when a row is inserted
// without one. Timestamps are Unix seconds (integers survive round trips
// through the store untouched, unlike formatted time strings).
//
// # Naming
//
// Payer and orderer names are free text attributed to a batch of items.
// They are normalized (trimmed, folded for comparison) only at the
// aggregation layer, never in the stored rows.
package models
