package auth

// Known OAuth scopes used by the API.
const (
	ScopeWorkoutsWrite = "workouts:write"
	ScopeWorkoutsRead  = "workouts:read"
)

// SessionScopes are granted to every session issued after login.
var SessionScopes = []string{ScopeWorkoutsRead, ScopeWorkoutsWrite}
