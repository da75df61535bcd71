// Package app contains the core application logic: configuration, the
// conversion pipeline, and the export splitter, decoupled from any
// specific entrypoint like a CLI.
package app
