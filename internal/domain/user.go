package domain

const RoleStaff = "staff"

type User struct {
	ID           uint
	Username     string
	PasswordHash string
	Role         string
}
