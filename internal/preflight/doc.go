// Package preflight provides readiness checks for the paths and services
// mediato115 depends on.
//
// The CLI "doctor" command runs RunAll and prints one line per check; "serve"
// runs it once at startup and logs failures without refusing to start, since
// a missing allow-list root may be a mount that appears later.
package preflight
