package presentationdomain

import sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"

// RoleMap holds a guild's tier roles. Lookups by label return the first role
// seen with that label, while every role carrying a tier label (duplicates
// included) counts as a tier role when stripping stale ones.
type RoleMap struct {
	byLabel   map[string]sharedtypes.RoleID
	tierRoles map[sharedtypes.RoleID]string
}

func NewRoleMap() *RoleMap {
	return &RoleMap{
		byLabel:   make(map[string]sharedtypes.RoleID),
		tierRoles: make(map[sharedtypes.RoleID]string),
	}
}

// Add records a role carrying a tier label.
func (m *RoleMap) Add(label string, id sharedtypes.RoleID) {
	if _, ok := m.byLabel[label]; !ok {
		m.byLabel[label] = id
	}
	m.tierRoles[id] = label
}

// Lookup returns the role for a tier label.
func (m *RoleMap) Lookup(label string) (sharedtypes.RoleID, bool) {
	if m == nil {
		return "", false
	}
	id, ok := m.byLabel[label]
	return id, ok
}

// IsTierRole reports whether id is one of the guild's tier roles.
func (m *RoleMap) IsTierRole(id sharedtypes.RoleID) bool {
	if m == nil {
		return false
	}
	_, ok := m.tierRoles[id]
	return ok
}

// Labels returns the number of distinct tier labels present.
func (m *RoleMap) Labels() int {
	if m == nil {
		return 0
	}
	return len(m.byLabel)
}
