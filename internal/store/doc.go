// Package store defines the persistence contracts for users, their session
// tokens and their tasks.
//
// Implementations live under internal/platform. Every store can be rebound
// to a *sql.Tx with WithTx so services can group writes with
// RunInTransaction.
package store
