// Package requestid tags every request with an X-Request-ID and exposes it
// to the logger.
package requestid
