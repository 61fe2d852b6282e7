// Package openapi builds contact form models from OpenAPI 3 documents. The
// request body schema of a POST operation becomes the form: properties map
// to fields, "required" to required fields, and string constraints to
// validation rules. Presentation hints use x-formrelay-* extensions.
package openapi
