// Package domain contains the core business entities and errors for Quill.
// These types have no dependencies on infrastructure - they represent
// the pure business concepts of document ingestion, retrieval-augmented
// answering, style learning, and drafting.
package domain
