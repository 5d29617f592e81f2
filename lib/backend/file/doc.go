// Package file implements an immediate backend.IBackend that persists all
// entries in a single JSON object on disk.
//
// The whole key space is held in memory and the file is rewritten (write to
// a temporary file, then rename) after every Set, Remove and Clear. This is
// fine for the small key spaces the façade is meant for and keeps the file
// human readable.
package file
