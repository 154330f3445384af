package domain

// Role identifies who is acting on a guarded transition. Roles are fixed:
// clients buy slots, managers price and review, VP and PV approve in
// sequence, IT and material staff deploy banners.
type Role string

const (
	RoleClient   Role = "client"
	RoleManager  Role = "manager"
	RoleVP       Role = "vp"
	RolePV       Role = "pv"
	RoleIT       Role = "it"
	RoleMaterial Role = "material"
)

// Actor is the authenticated principal attached to every request by the
// identity middleware.
type Actor struct {
	ID   int64
	Role Role
}
