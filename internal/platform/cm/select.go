package cm

import (
	"fmt"
	"sort"
)

// FindService returns the single service of serviceType.
func FindService(services []Service, serviceType string) (*Service, error) {
	var matches []Service
	for _, s := range services {
		if s.Type == serviceType {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no %s service found", serviceType)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("found %d %s services, expected one", len(matches), serviceType)
	}
}

// FindRoleConfigGroup returns the role config group for roleType. With several
// candidates the base group wins.
func FindRoleConfigGroup(groups []RoleConfigGroup, roleType string) (*RoleConfigGroup, error) {
	var matches []RoleConfigGroup
	for _, g := range groups {
		if g.RoleType == roleType {
			matches = append(matches, g)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no %s role config group found", roleType)
	case 1:
		return &matches[0], nil
	}
	for i := range matches {
		if matches[i].Base {
			return &matches[i], nil
		}
	}
	return nil, fmt.Errorf("found %d %s role config groups and none is the base group", len(matches), roleType)
}

// FindRole returns the first role of roleType.
func FindRole(roles []Role, roleType string) (*Role, error) {
	for i := range roles {
		if roles[i].Type == roleType {
			return &roles[i], nil
		}
	}
	return nil, fmt.Errorf("no %s role found", roleType)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
