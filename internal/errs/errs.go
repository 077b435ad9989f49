// Package errs defines the error shapes the API sends to clients.
//
// There are two of them:
//   - HTTPError: transport-level failures (bad body, unknown route, rate
//     limited, internal error) serialized as {code, message, status, ...}
//     with a matching HTTP status.
//   - ResultError: issue operation outcomes. They are always sent with
//     HTTP 200 as {"error": "...", "_id": "..."} and the real cause is only
//     logged.
package errs
