// Package model defines the provider-agnostic abstraction for the language
// model that drives every agent loop.
//
// Core goals:
//   - Unify streaming and non-streaming generation behind a single interface
//   - Keep request/response shapes minimal: a transcript in, text out
//   - Collapse every provider failure into one error the loop can report
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, OpenAI compatible local servers) implement
// the Model interface in sub packages so agents remain decoupled from vendor
// SDKs. Tool calls travel inside the reply text, so adapters never need
// vendor function calling.
package model
