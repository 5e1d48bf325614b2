package models

import "telemed-service/internal/pkg/constvars"

// Session is the authenticated caller resolved from the bearer token.
type Session struct {
	UserID string
	Role   string
}

func (s *Session) IsAdmin() bool {
	return s.Role == constvars.RoleAdmin || s.Role == constvars.RoleSuperadmin
}

func (s *Session) IsDoctor() bool {
	return s.Role == constvars.RoleDoctor
}
