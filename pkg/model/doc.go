// Package model defines the form model shared by the controller, the
// validators and the renderers. A FormModel describes one contact form: where
// it submits to and which named fields it carries. Field types are the small
// set of input kinds brochure-site contact forms use (text, email, tel,
// textarea, select); each field may carry extra validation rules encoded as
// canonical identifiers (minLength, maxLength, pattern) with string
// parameters so JSON snapshots stay deterministic.
package model
