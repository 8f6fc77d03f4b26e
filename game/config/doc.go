// Package config loads field map files from disk and caches their compiled
// form. Map files are JSON documents holding a character layout and a legend;
// the manager validates and compiles them once and serves the shared result
// to every session created on the same map.
package config
