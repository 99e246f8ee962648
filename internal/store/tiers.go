package store

// Tier is the informational contributor rank shown next to a user's reviews,
// derived from how many carts they have reported. Display only, never used
// for access control.
type Tier struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func TierFor(activityCount int) Tier {
	switch {
	case activityCount >= 50:
		return Tier{Name: "챌린저 붕어", Color: "#F0E68C"}
	case activityCount >= 20:
		return Tier{Name: "골드 붕어", Color: "#FFD700"}
	case activityCount >= 10:
		return Tier{Name: "실버 붕어", Color: "#C0C0C0"}
	default:
		return Tier{Name: "브론즈 붕어", Color: "#CD7F32"}
	}
}
