package model

import "time"

// User roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is a directory entry used for profile snapshots and notification
// recipient lists.
type User struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"fullName" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Role      string    `json:"role" db:"role"`
	Disabled  bool      `json:"disabled" db:"disabled"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
