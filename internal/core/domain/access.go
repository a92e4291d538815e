package domain

import "errors"

var ErrForbidden = errors.New("access forbidden")

// Filter is the effective subset of users or clicks a caller may read.
// All takes precedence over Username.
type Filter struct {
	All      bool
	Username string
}

// Scope narrows a read of requested (empty = "whatever I may see") to what
// caller is allowed to see. The same rule guards the user listing, the click
// listing and the ranged report:
//   - admins get everything, or exactly the requested username;
//   - everyone else gets only their own records, and asking for another
//     username is forbidden.
func Scope(caller *Session, requested string) (Filter, error) {
	if caller == nil {
		return Filter{}, ErrUnauthorized
	}
	if caller.IsAdmin {
		if requested == "" {
			return Filter{All: true}, nil
		}
		return Filter{Username: requested}, nil
	}
	if requested == "" || requested == caller.Username {
		return Filter{Username: caller.Username}, nil
	}
	return Filter{}, ErrForbidden
}
