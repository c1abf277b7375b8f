package scene

// Kind distinguishes primitive types in a Snapshot.
type Kind int

const (
	KindBox Kind = iota
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Item is an immutable copy of one visible primitive.
type Item struct {
	ID       string     `json:"id"`
	Kind     Kind       `json:"kind"`
	Text     string     `json:"text,omitempty"`
	Position Vec3       `json:"position"`
	Scale    Vec3       `json:"scale"`
	Dims     Vec3       `json:"dims,omitempty"`
	Material Material   `json:"material"`
	Style    LabelStyle `json:"style"`
}

// Size returns the rendered extent of a box: base dimensions times scale.
func (it Item) Size() Vec3 {
	return it.Dims.Mul(it.Scale)
}

// Snapshot is a point-in-time view of a scene's visible primitives.
type Snapshot struct {
	Items []Item `json:"items"`
}

// Boxes returns the visible boxes with the given role.
func (s Snapshot) Boxes(role Role) []Item {
	var out []Item
	for _, it := range s.Items {
		if it.Kind == KindBox && it.Material.Role == role {
			out = append(out, it)
		}
	}
	return out
}

// Labels returns the visible labels.
func (s Snapshot) Labels() []Item {
	var out []Item
	for _, it := range s.Items {
		if it.Kind == KindLabel {
			out = append(out, it)
		}
	}
	return out
}

// IsEmpty reports whether nothing is visible.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
