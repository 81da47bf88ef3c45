// Package history records segmentation runs in a SQLite database under the
// state directory.
//
// Each run, successful or not, becomes one row carrying its thresholds, frame
// and segment counts, and output path. The schema lives in schema.sql and is
// versioned through the schema_version table; a version change requires
// deleting the database.
package history
