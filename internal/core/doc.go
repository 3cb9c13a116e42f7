// Package core converts claims exports into the benefit template workbook.
//
// This package holds all domain logic, independent of any UI or transport
// layer. The web server and the command line tool both drive it through
// [Service.Process].
//
// # Pipeline
//
// One upload produces one run. Data flows one way:
//
//  1. [ReadTable] parses the CSV upload into a text [Table]
//  2. [FilterApproved] keeps rows with ClaimStatus "R"
//  3. [KeepLast] drops earlier duplicates of a claim identifier
//  4. [NormalizeDates] coerces Treatment Start, Treatment Finish and
//     Payment Date, turning unparseable cells into the not-a-date sentinel
//  5. [DropColumns] removes the legacy Claim Status and BAmount columns
//  6. [Summarize] totals Billed, Accepted, Excess Total and Unpaid
//  7. [WriteXLSX] writes the table to the "SC" sheet of a workbook
//
// Stages never modify their input and a failing stage aborts the run.
//
// # Error Handling
//
// Failures fall into three kinds (see [KindOf]):
//
//   - Invalid input: a required column is missing ([MissingColumnError])
//   - Malformed value: a date cell that does not parse. Recovered in place
//     with a sentinel and a [Warning], never returned as an error
//   - IO: the upload is not CSV, is empty or too large, or the export failed
//
// [MapError] turns any of them into a [UserMessage] with a support code.
package core
