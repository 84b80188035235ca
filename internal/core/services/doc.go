// Package services contains the core business logic, implementing the
// driving ports on top of the driven ports. Services are constructed
// with their dependencies and hold no global state.
package services
