package domain

import (
	"slices"
	"time"
)

// Project groups tasks and defines which members may see them.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`

	// ManagerID is the designated owner. It is a weak reference to a User.
	ManagerID string `json:"managerId"`

	// Members lists the user IDs with access. Order is kept for display only.
	Members []string `json:"members"`

	CreatedAt time.Time `json:"createdAt"`
}

// HasMember reports whether userID is a member of the project.
func (p *Project) HasMember(userID string) bool {
	return slices.Contains(p.Members, userID)
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	p.Members = slices.Clone(p.Members)
	if p.Members == nil {
		p.Members = []string{}
	}
	return p
}
