// Package hcl provides the HCL implementation of the config.Loader interface.
// It is responsible for file parsing, expression evaluation and the
// translation of HCL blocks into the format-agnostic config model.
//
// Expressions may reference var.<name> for declared variables and env.<NAME>
// for process environment variables. A variable's default can be overridden
// with the environment variable GRIDETL_VAR_<NAME>, where NAME is the
// upper-cased variable name.
package hcl
