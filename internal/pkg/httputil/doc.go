// Package httputil writes the admin API's JSON responses. Every error body
// is {"error": "..."}; 429 responses also carry retryAfter in seconds,
// matching the Retry-After header.
package httputil
