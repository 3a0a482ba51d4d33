package policy

import (
	"fmt"

	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/svcerr"
)

// Role is the authorization class of a principal. Roles are mutually exclusive.
type Role int

const (
	RoleCustomer Role = iota
	RoleManager
	RoleDeliveryAgent
)

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "manager"
	case RoleDeliveryAgent:
		return "delivery agent"
	default:
		return "customer"
	}
}

// RoleOf resolves the role from group memberships. Manager wins over delivery crew.
func RoleOf(p principal.Principal) Role {
	u := user.User{Groups: p.Groups}
	switch {
	case u.InGroup(user.GroupManager):
		return RoleManager
	case u.InGroup(user.GroupDeliveryCrew):
		return RoleDeliveryAgent
	default:
		return RoleCustomer
	}
}

// mutable is the {role x field} table of order fields each role may change.
var mutable = map[Role]map[order.Field]bool{
	RoleManager: {
		order.FieldDeliveryAgent: true,
		order.FieldStatus:        true,
	},
	RoleDeliveryAgent: {
		order.FieldStatus: true,
	},
	RoleCustomer: {},
}

// CanMutate reports whether role may change field.
func CanMutate(role Role, field order.Field) bool {
	return mutable[role][field]
}

// Scope narrows q to the orders p may see.
func Scope(p principal.Principal, q order.QueryOrdersModel) order.QueryOrdersModel {
	switch RoleOf(p) {
	case RoleManager:
	case RoleDeliveryAgent:
		q.DeliveryAgentIds = []int64{p.UserID}
	default:
		q.UserIds = []int64{p.UserID}
	}

	return q
}

// CanView reports whether o is inside p's visible set.
func CanView(p principal.Principal, o order.Order) bool {
	switch RoleOf(p) {
	case RoleManager:
		return true
	case RoleDeliveryAgent:
		return o.DeliveryAgentID != nil && *o.DeliveryAgentID == p.UserID
	default:
		return o.UserID == p.UserID
	}
}

// CheckUpdate rejects u as a whole when any present field is outside the
// caller's allowed set.
func CheckUpdate(p principal.Principal, u order.Update) error {
	role := RoleOf(p)
	if role == RoleCustomer {
		fields := make(map[string]string, len(u.Fields))
		for _, f := range u.Fields {
			fields[string(f)] = "customers cannot update orders"
		}

		return svcerr.Forbidden("customers cannot update orders").WithFields(fields)
	}

	denied := map[string]string{}
	for _, f := range u.Fields {
		if !CanMutate(role, f) {
			denied[string(f)] = fmt.Sprintf("a %s cannot change this field", role)
		}
	}
	if len(denied) > 0 {
		return svcerr.Forbidden("update contains fields the caller cannot change").WithFields(denied)
	}

	return nil
}

// CheckReplace always fails: orders only accept partial updates.
func CheckReplace(principal.Principal) error {
	return svcerr.Forbidden("must use partial update")
}

// CanManageStaff reports whether p may change staff group memberships.
func CanManageStaff(p principal.Principal) bool {
	return RoleOf(p) == RoleManager
}
