// Package validation implements client-side style field checks for contact
// forms: required values, a simple email shape, a configurable phone
// digit-grouping pattern, and the length/pattern rules carried on the model.
package validation
