// Package tags implements the tag store: named owners, each grouping a set
// of tagged filesystem paths. A path belongs to at most one owner.
//
// Membership queries are answered from an in-memory set that mirrors the
// database and is rebuilt by Reload.
package tags
