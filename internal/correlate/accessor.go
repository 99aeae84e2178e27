package correlate

import "github.com/papapumpkin/ziwei/internal/chart"

// The accessors below are total: a nil scope, a short array or an
// out-of-range index yields an empty result, never a panic.

// StarsAtIndex returns the stars placed at fixed position i in the scope.
func StarsAtIndex(s *chart.Scope, i int) []chart.Star {
	if s == nil || i < 0 || i >= len(s.Stars) || s.Stars[i] == nil {
		return []chart.Star{}
	}
	return s.Stars[i]
}

// RoleAtIndex returns the role name occupying fixed position i in the scope,
// or nil.
func RoleAtIndex(s *chart.Scope, i int) *string {
	if s == nil || i < 0 || i >= len(s.PalaceNames) || s.PalaceNames[i] == "" {
		return nil
	}
	role := s.PalaceNames[i]
	return &role
}

// StarsByRoleName returns the stars at whichever position the scope assigns
// to role. The role index is rebuilt on every call.
func StarsByRoleName(s *chart.Scope, role string) []chart.Star {
	byRole := roleIndex(s)
	i, ok := byRole[role]
	if !ok {
		return []chart.Star{}
	}
	return StarsAtIndex(s, i)
}

// roleIndex maps each role name to its position in the scope. When a name
// repeats, the later position wins.
func roleIndex(s *chart.Scope) map[string]int {
	if s == nil {
		return map[string]int{}
	}
	m := make(map[string]int, len(s.PalaceNames))
	for i, name := range s.PalaceNames {
		m[name] = i
	}
	return m
}

// stringAt returns list[i] as a nullable string.
func stringAt(list []string, i int) *string {
	if i < 0 || i >= len(list) {
		return nil
	}
	return nullable(list[i])
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
