// Package repository implements the generic data-access core: a typed CRUD
// engine over Bun, a pure filter-to-SQL translator, transactional bulk
// operations, and the shared error taxonomy concrete repositories surface.
package repository
