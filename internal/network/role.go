// Package network holds the static structure of a simulated population: the
// neuron store with its role layout and the directed connection graph.
package network

import (
	"fmt"
	"strings"
)

// Role is the functional class of a neuron. The set is closed; every switch
// over Role in this module lists all cases.
type Role int

const (
	RoleSensory Role = iota
	RoleMotor
	RoleFeatureEdge
	RoleFeatureAngle
	RoleAssociation
	RoleMemory
	RoleConcept
	RoleInhibitory
)

// Roles lists every role in declaration order.
var Roles = []Role{
	RoleSensory,
	RoleMotor,
	RoleFeatureEdge,
	RoleFeatureAngle,
	RoleAssociation,
	RoleMemory,
	RoleConcept,
	RoleInhibitory,
}

func (r Role) String() string {
	switch r {
	case RoleSensory:
		return "SENSORY"
	case RoleMotor:
		return "MOTOR"
	case RoleFeatureEdge:
		return "FEATURE_EDGE"
	case RoleFeatureAngle:
		return "FEATURE_ANGLE"
	case RoleAssociation:
		return "ASSOCIATION"
	case RoleMemory:
		return "MEMORY"
	case RoleConcept:
		return "CONCEPT"
	case RoleInhibitory:
		return "INHIBITORY"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole maps a role name (case-insensitive) to a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// MarshalText implements encoding.TextMarshaler so roles render by name in JSON.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
