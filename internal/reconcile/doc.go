// Package reconcile merges polled event history with the live push feed into
// one deduplicated, newest-first timeline.
package reconcile
