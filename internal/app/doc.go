// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App runs the pipeline once, or, in serve mode, keeps running and
// triggers it on the pipeline's schedule.
package app
