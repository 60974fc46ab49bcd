// Package routes decides which surface of the app a signed-in user lands on.
package routes

import "strings"

// Destination is a top-level navigation surface.
type Destination string

const (
	Admin  Destination = "admin"
	Office Destination = "office"
	Staff  Destination = "staff"
	User   Destination = "user"
)

const rolePrefix = "ROLE_"

var roleDestinations = map[string]Destination{
	"ADMIN_SYSTEM":   Admin,
	"ADMINISTRATIVE": Office,
	"STAFF":          Staff,
}

// rank orders destinations when a user holds several roles.
var rank = map[Destination]int{
	User:   0,
	Staff:  1,
	Office: 2,
	Admin:  3,
}

// NormalizeRole trims, upper-cases and strips the ROLE_ prefix.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(role, rolePrefix)
}

// Resolve maps roles to a destination. Unknown roles and an empty list go to
// User; with several known roles the most privileged destination wins.
func Resolve(roles []string) Destination {
	destination := User
	for _, role := range roles {
		d, ok := roleDestinations[NormalizeRole(role)]
		if ok && rank[d] > rank[destination] {
			destination = d
		}
	}
	return destination
}
