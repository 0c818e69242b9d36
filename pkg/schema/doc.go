// Package schema holds the descriptors an introspector produces and a
// generator consumes: classes with their fields, constructor and methods, and
// the recursive type descriptors of every field, argument and return value.
//
// Every descriptor is an immutable value built through a validating
// constructor. Classes refer to each other by name only; NewSchema resolves
// those names against the whole set of classes.
package schema
