// Package artifacts writes per-file extraction outputs to a directory.
//
// Each result produces <stem>_extracted.json, checked against an embedded
// JSON schema before it is written, and a plain-text <stem>_extracted.txt.
package artifacts
