package repositories

import "github.com/google/uuid"

// validID reports whether s is a well-formed uuid. By-id lookups check it
// up front: postgres rejects malformed values with a cast error instead of
// an empty result, and a bad id must read as not found.
func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
