package models

// Built-in role names seeded by migrations.
const (
	RoleMember       = "Member"
	RoleMemberTasker = "MemberTasker"
)

type Role struct {
	ID             int64
	Name           string
	NormalizedName string
}
