// Package api handles incoming HTTP requests: it decodes and validates
// request bodies, calls the services, and maps their results and errors to
// HTTP responses. Route registration lives with the server in cmd/server.
package api
