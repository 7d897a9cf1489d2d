// Package router classifies incoming document-processing requests, selects
// an AI backend for them with availability-aware fallback, and drives
// execution with per-attempt metric capture.
package router
