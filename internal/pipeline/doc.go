// Package pipeline orchestrates tree discovery, extension filtering,
// concurrent per-file conversion, and batch summary reporting.
//
// The flow is fork-join:
//
//	Walk(root) → non-directory entries → ExtensionFilter → alias de-dup
//	  → bounded worker pool (convert.Convert per file) → join → Report
//
// Workers share only immutable inputs (the decoder and options) and each
// writes its result into its own slot of a pre-sized slice, so no locking
// is needed on the result path.
package pipeline
