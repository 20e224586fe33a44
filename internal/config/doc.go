// Package config defines the format-agnostic model of a pipeline file, along
// with the Loader interface implemented by format-specific packages.
//
// The model is the single source of truth the application wires the warehouse,
// compute and schedule layers from. Concrete loaders, such as the HCL one, live
// in separate packages.
package config
