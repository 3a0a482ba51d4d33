package user

import "slices"

// Group names as stored by the identity provider.
const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery crew"
)

// User is an account known to the identity provider.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"-"`
}

// InGroup reports whether the user belongs to group.
func (u User) InGroup(group string) bool {
	return slices.Contains(u.Groups, group)
}
