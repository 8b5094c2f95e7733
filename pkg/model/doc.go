// Package model defines the chat entities the spotlight search core reads.
// Rooms, users, and subscriptions are owned by their stores; every value in
// this package is a transient per-request view and is never written back.
package model
