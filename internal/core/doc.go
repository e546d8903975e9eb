// Package core runs content imports for the school-admin console.
//
// It sits between the HTTP layer and the remote API and is usable from
// handlers or tests without modification.
//
// # Import flow
//
// [Service.ImportContent] takes one uploaded file:
//
//  1. A per-school guard rejects a second concurrent import
//     ([ErrImportInProgress]); a global [ImportLimiter] bounds parallelism.
//  2. The body is read up to the configured size limit.
//  3. Text files are decoded (BOM removed, invalid UTF-8 replaced) and
//     parsed by csvimport; .xlsx workbooks are read from the first sheet.
//  4. Blank records are dropped; the rest go to the API in a single bulk
//     call, so the catalog sees all of the file or none of it.
//  5. The outcome lands in the import history, best effort.
//
// # Error Handling
//
// Failures are sentinel errors ([ErrNothingToImport], [ErrBlankRecords],
// ...) or wrapped API errors. [MapError] turns any of them into a
// [UserMessage] with a support code; messages sent by the API are shown
// verbatim.
package core
