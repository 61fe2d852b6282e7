// Package server relays contact form posts from a browser to the form
// endpoint. It renders the contact page, runs one controller cycle per
// submitted form instance (keyed by the hidden form token) and answers
// with the re-rendered page or a JSON summary.
//
// Routes, relative to the mount path:
//
//	GET  /          contact page with a fresh form token
//	POST /contact   submit; 200, 409, 422, 429 or 502
//	GET  /healthz   liveness probe
//	GET  /assets/   embedded stylesheet
package server
