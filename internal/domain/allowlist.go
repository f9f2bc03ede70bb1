package domain

import "slices"

// AllowList enumerates the fields a single update operation may touch.
type AllowList []string

// Fields updatable through PATCH /users/me and PATCH /tasks/{id}.
var (
	UserPatchFields = AllowList{"name", "email", "password", "age"}
	TaskPatchFields = AllowList{"description", "completed"}
)

// Allows reports whether field is on the list.
func (a AllowList) Allows(field string) bool {
	return slices.Contains(a, field)
}

// Check returns ErrInvalidUpdates if any of keys is not on the list.
// Either every key is allowed or the update must not be applied at all.
func (a AllowList) Check(keys []string) error {
	for _, key := range keys {
		if !a.Allows(key) {
			return ErrInvalidUpdates
		}
	}
	return nil
}
