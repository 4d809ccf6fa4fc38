// Package core runs skid rate editing sessions on top of the matrix engine.
//
// A [Service] holds open sessions keyed by an opaque handle. Each session is
// an independent [matrix.Session] guarded by its own mutex, so concurrent
// requests against one handle are applied one at a time while different
// editors never block each other.
//
// # Collaborators
//
// The service never talks to PostgreSQL directly. It drives four interfaces:
//
//   - [RateRepository] loads one (service, service type) slice and persists
//     a matrix snapshot, replacing whole slices in one transaction.
//   - [CitySource] supplies the ordered pickup city list.
//   - [ServiceCatalog] supplies the selectors a user may open.
//   - [AuditLogger] records every state-changing action.
//
// [NewPostgresService] wires all four to [PostgresStore] and [AuditService].
//
// # Imports
//
// Uploaded rate sheets pass through [ReadImportText], which enforces the
// size limit, drops a UTF-8 BOM, and replaces invalid UTF-8. An
// [ImportLimiter] caps how many imports run at once.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - DB001-DB005: database connectivity and constraint errors
//   - CSV001-CSV004: header, selector, city, and skid count errors
//   - SES001-SES003: missing sessions, cancellation, save timeouts
//   - FILE001-FILE004: upload size, presence, emptiness, and load
//
// Errors returned by the repository during Save reach the caller unchanged.
//
// # Audit Logging
//
// Severity by action:
//
//   - Low: cell edits
//   - High: imports and saves
//   - Critical: clearing the whole matrix
package core
