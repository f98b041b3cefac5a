// Package profile defines the user profile record used by search.
package profile

// Profile is the public description of an identity.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio,omitempty"`
}
