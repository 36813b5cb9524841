// Package memoryRepo holds in-process implementations of every repository interface.
// They keep the same compare-and-swap contracts as the Mongo repositories and back
// the service tests and STORAGE_DRIVER=memory.
package memoryRepo
