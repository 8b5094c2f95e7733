// Package authz answers capability questions for an identity: named
// permissions and room access. All checks are read-only; the search core
// treats a denied check as "return nothing" rather than an error, so
// private rooms and users never leak through error content.
package authz
