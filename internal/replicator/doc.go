// Package replicator runs a complete corpus generation for one medium.
//
// A run takes the destination lock, checks every recipe against the
// configured expansion ceiling, generates the seed templates, applies each
// recipe to each template, removes the templates, and finally deletes
// byte-identical outputs. Every file produced is recorded in the run
// manifest when one is supplied.
package replicator
