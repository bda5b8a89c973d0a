// Package echo implements the identity-echoing request handler shared by
// the backend1 and backend2 test fixtures.
//
// Every GET returns a JSON object describing the fixture (backend, port,
// path, timestamp, message); every POST additionally echoes the request
// body as received_data, or null when the body was empty. Any path is
// accepted verbatim. Methods other than GET and POST get an explicit
// 405 with an Allow header.
package echo
