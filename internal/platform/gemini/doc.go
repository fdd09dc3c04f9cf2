// Package gemini implements the generation.Generator interface using
// Google's Gemini API. It owns prompt construction, response parsing, and
// retry behavior; callers only see domain content items or generation
// package errors.
package gemini
