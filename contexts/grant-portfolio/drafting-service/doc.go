// Package drafting implements proposal drafting for Grant STW: draft
// creation with composer-seeded content, append-only version lineage,
// rollback to prior versions, and lineage retrieval.
//
// Layering:
// - domain: drafts, versions, the section composer, and the lineage walk
// - application: commands/queries using explicit ports
// - ports: stable boundaries for persistence and the org/grant directories
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the grant-portfolio context.
// - Authorization is consumed through the Authorizer port; the membership
//   module's access gate satisfies it structurally.
// - Organization and grant data is read through directory ports as
//   projections; this module never writes those rows.
// - Version history is append-only. Rollback moves the head pointer and
//   never deletes or rewrites stored versions. Appends may branch from any
//   earlier version of the same draft; versions of other drafts are
//   rejected.
package drafting
