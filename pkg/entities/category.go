package entities

// Category is the support category a ticket belongs to.
type Category string

const (
	// CategoryDesk is for general issues and questions.
	CategoryDesk Category = "Desk Support"

	// CategoryInternalAffairs is for officer reports and cases.
	CategoryInternalAffairs Category = "Internal Affairs"

	// CategoryHR is for HR+ support.
	CategoryHR Category = "HR Support"
)

// Categories is every supported category, in panel order.
var Categories = []Category{
	CategoryDesk,
	CategoryInternalAffairs,
	CategoryHR,
}

// Valid reports whether the category is one of the supported categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
