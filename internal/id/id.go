package id

import "github.com/google/uuid"

// UUID generates a UUID v4 (random).
// Returns a string in the format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
func UUID() string {
	return uuid.NewString()
}
