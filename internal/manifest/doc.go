// Package manifest records generation runs and the files they produced in
// SQLite.
//
// Each run gets a UUID and stores the medium, destination directory, status,
// and counters. Artifacts record the recipe, template, and variation label
// behind every corpus file along with its digest, so duplicates removed after
// generation can be traced back to the file that was kept.
//
// Schema changes bump schemaVersion in schema.go; an older database must be
// deleted to adopt the new schema.
package manifest
