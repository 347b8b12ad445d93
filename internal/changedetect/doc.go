// Package changedetect decides whether a file needs (re)processing by
// comparing its current modification time and content fingerprint with the
// catalog's stored state.
package changedetect
