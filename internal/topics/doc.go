// Package topics holds the default keyword clustering, title and link
// selection used by the planning engine. Every function is deterministic.
package topics
