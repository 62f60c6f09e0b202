// Package knowledge contains the shared Knowledge Store agents use to hand
// off findings without sharing transcripts. The store contract
// (core.KnowledgeStore) and entry types reside in the core package; this
// package provides the concrete Store plus pluggable ranking indexes:
//
//   - BleveIndex: in-memory full text index (default)
//   - ChromemIndex: in-memory vector index over an embedding function
//
// Entries are immutable once written. Store serializes each call and is safe
// for concurrent use by any number of agents.
package knowledge
