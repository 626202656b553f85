// Package watch subscribes to filesystem change events for a project tree
// and forwards add/change/remove notifications through an ignore predicate,
// signalling readiness once the initial scan has registered every
// directory.
package watch
