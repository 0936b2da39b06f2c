// Package transport manages the persistent push channel that delivers
// lifecycle event frames, including bounded reconnection after transport
// failures.
package transport
