// Package authz decides what an identity may do with project-scoped resources.
//
// Core concepts:
//
//   - Identity: the authenticated caller of a single request. It is always passed
//     explicitly; nothing in this package reads ambient request state.
//
//   - Resource: anything that can name its owning project and its author. A
//     resource whose project cannot be resolved is treated as not found.
//
//   - Resolver: evaluates (identity, action, kind, resource) against project
//     membership. Resources outside the caller's projects are reported as
//     NotFound, never Forbidden, so membership is not disclosed.
//
//   - Consent: personal-data flags may only be true for users aged 15 or more.
package authz
