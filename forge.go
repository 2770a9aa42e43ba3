// Package forge generates buildable Go project skeletons from archetypes
// and optional features.
package forge

// Version is the forge release version.
const Version = "0.1.0"
