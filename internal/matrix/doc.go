// Package matrix implements the skid-based rate matrix used to price pickups.
//
// A rate is addressed by pickup city, service, service type, and a skid count
// from the fixed set 1..12. The package holds no I/O of its own: callers supply
// the pickup-city list and the active selector, and persistence happens through
// the [Persister] handed to [Session.Save].
//
// # Components
//
//   - [Store]: sparse in-memory mapping. Absent entries read as 0.00.
//   - [Encode] / [Decode]: the canonical CSV interchange format.
//   - [Editor]: turns one user-entered string into a normalized rate.
//   - [Session]: binds the above to a (service, service type, currency)
//     selector and tracks whether there are unsaved changes.
//
// # CSV Format
//
// The interchange layout is positional and fixed:
//
//	PICKUP CITY,1 SKID,2 SKIDS,...,12 SKIDS
//	TORONTO,$45.00,$60.00,$75.00,$0.00,...,$0.00
//
// Export always writes every city of the supplied list in list order. Import
// rejects a file whose first header field lacks PICKUP CITY, skips rows for
// unknown cities, and zeroes any cell that does not parse.
//
// A Session is not safe for concurrent use. Front ends that share one across
// goroutines must serialize access themselves.
package matrix
