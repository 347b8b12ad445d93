// Package exifmeta reads capture metadata from a single image file.
//
// Extract sniffs the container (TIFF family by magic, JPEG and PNG by
// content), locates the embedded EXIF block, and maps a fixed set of tags
// into Metadata. Failures come back as a *Failure tagged with a
// services.Kind; the extractor never panics outward.
package exifmeta
