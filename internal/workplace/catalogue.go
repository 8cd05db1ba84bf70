package workplace

import "fmt"

// Catalogue returns the demo floor plan for a branch. It is used to seed an
// empty database. Unknown branches have no resources.
func Catalogue(branch Branch) []Resource {
	switch branch {
	case BranchMoscow:
		res := desks(BranchMoscow, "PC", 150, 100)
		return append(res,
			room("moscow-neg-1", "Negotiation Room A", KindNegotiation, BranchMoscow, 600, 120, 4),
			room("moscow-neg-2", "Negotiation Room B", KindNegotiation, BranchMoscow, 680, 120, 6),
			room("moscow-neg-3", "Negotiation Room C", KindNegotiation, BranchMoscow, 760, 120, 8),
			room("moscow-conf-1", "Large Conference Hall", KindConference, BranchMoscow, 600, 250, 30),
			room("moscow-conf-2", "Small Conference Hall", KindConference, BranchMoscow, 720, 250, 15),
		)
	case BranchSPb:
		res := desks(BranchSPb, "SPB", 120, 80)
		return append(res,
			room("spb-neg-1", "Severnaya Negotiation Room", KindNegotiation, BranchSPb, 550, 100, 4),
			room("spb-neg-2", "Baltiyskaya Negotiation Room", KindNegotiation, BranchSPb, 630, 100, 6),
			room("spb-conf-1", "Neva Conference Hall", KindConference, BranchSPb, 550, 220, 20),
		)
	}
	return nil
}

// desks lays out 15 workplaces in 5 columns by 3 rows.
func desks(branch Branch, prefix string, originX, originY int) []Resource {
	const count = 15
	out := make([]Resource, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Resource{
			ID:     fmt.Sprintf("%s-wp-%d", branch, i+1),
			Name:   fmt.Sprintf("Computer %d", i+1),
			Number: fmt.Sprintf("%s-%02d", prefix, i+1),
			Kind:   KindWorkplace,
			Branch: branch,
			X:      originX + (i%5)*70,
			Y:      originY + (i/5)*80,
		})
	}
	return out
}

func room(id, name string, kind Kind, branch Branch, x, y, capacity int) Resource {
	return Resource{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Branch:   branch,
		X:        x,
		Y:        y,
		Capacity: &capacity,
	}
}
