// Package dedupe provides a size-bounded seen-ID cache so consumers of the
// reconciled timeline can tell fresh entries from ones already handled.
package dedupe
