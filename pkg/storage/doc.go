// Package storage defines the persistence contracts for users, credentials,
// and posts, plus the sentinel errors implementations translate into.
// Implementations live in the postgres and memory subpackages.
package storage
