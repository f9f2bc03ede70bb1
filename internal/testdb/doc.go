// Package testdb provides databases for tests.
//
// NewSQLite gives every test its own migrated SQLite file, so store and API
// tests run hermetically and in parallel. NewPostgres connects to the
// database named by TASKMGR_TEST_DATABASE_URL for integration tests and
// skips the test when it is unset.
package testdb
