// Package service contains the application use cases. It orchestrates the
// domain types and the stores in internal/store to implement account and
// task management.
//
// Services receive their dependencies through constructors and never depend
// on a concrete database. Lifecycle side effects, such as hashing a changed
// password, deleting a user's tasks before the user, and sending account
// emails, are explicit steps inside the service methods.
package service
