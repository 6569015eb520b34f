package caregivers

type Caregiver struct {
	UserID     string
	Username   string
	FirstName  string
	LastName   string
	AvatarPath string
}

// Roster es lo que necesita la pantalla de gestión de cuidadores.
type Roster struct {
	CatID     string
	OwnerID   string
	Assigned  []Caregiver
	Available []Caregiver
}
