// Package blob stores original uploaded PDFs on the local filesystem.
//
// Files live under <dataDir>/uploads with the document's stored filename.
package blob
