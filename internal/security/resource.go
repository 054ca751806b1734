package security

// Owned is anything that records the account allowed to change it.
type Owned interface {
	OwnerRef() string
}

// CanMutate grants owners and admins write access to a resource.
func CanMutate(resource Owned, actor Identity) bool {
	if actor.UserID == "" {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return resource.OwnerRef() != "" && resource.OwnerRef() == actor.UserID
}

// SelfOrAdmin is the user-profile flavour of CanMutate.
type SelfOrAdmin string

func (s SelfOrAdmin) OwnerRef() string {
	return string(s)
}
