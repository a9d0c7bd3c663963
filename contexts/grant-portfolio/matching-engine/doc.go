// Package matching implements the grant catalog and the alignment scoring
// engine for Grant STW: grant ingestion, per-organization match computation,
// ranked retrieval, and pursuit assignments.
//
// Layering:
// - domain: grants, matches, assignments, the pure scoring functions
// - application: commands/queries/workers using explicit ports
// - ports: stable boundaries for persistence, the org directory, and the
//   similarity index
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the grant-portfolio context.
// - Authorization is consumed through the Authorizer port; the membership
//   module's access gate satisfies it structurally.
// - Organization data is read through the directory port as a projection;
//   this module never writes organization rows.
package matching
