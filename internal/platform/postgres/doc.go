// Package postgres provides PostgreSQL implementations of the store
// interfaces. Query shapes specific to this backend stay here; callers
// only see the store contracts and sentinel errors.
package postgres
