// Package middleware provides HTTP middleware for the metrics listener.
//
// Requests are logged in W3C Extended Log Format through the logging package.
// Scrapes of /metrics are logged at debug level so a busy Prometheus does not
// flood the console.
package middleware
