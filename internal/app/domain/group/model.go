package group

import "time"

// Group collects users for shared permissions inside the back-office.
type Group struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership is a join row linking one user to one group.
type Membership struct {
	GroupID string
	UserID  string
	AddedBy string
	AddedAt time.Time
}
