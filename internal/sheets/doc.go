// Package sheets implements the tabular operations of the gateway against
// the Google Sheets v4 REST API.
//
// Requests and responses use the wire types of
// google.golang.org/api/sheets/v4. Ranges are A1 notation and are not
// validated locally; the remote API is the authority on range grammar.
package sheets
