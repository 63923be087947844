// The config package encapsulates configuration for the annodiff commands
// (annodiffd, annodiff).
//
// Configuration lives in a dedicated base directory. When loading the
// configuration, the first and only argument is the path to the base
// directory rather than the path to the configuration file. The designated
// directory is expected to contain a file called 'config' with one key and
// value per line, separated by white space. Blank lines and lines starting
// with '#' are ignored. Keys that are not present take the values in
// Default.
package config
