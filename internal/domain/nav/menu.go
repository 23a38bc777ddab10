package nav

// MenuType distinguishes menu rows.
type MenuType string

const (
	MenuDirectory MenuType = "M"
	MenuPage      MenuType = "C"
	MenuButton    MenuType = "F"
)

// Menu is a persisted menu row from which routes are generated.
type Menu struct {
	ID        int64
	ParentID  int64
	Name      string
	OrderNum  int
	Path      string
	Component string
	Query     string
	RouteName string
	// External is true for menus that open an outside URL instead of an in-app view.
	External bool
	Cache    bool
	Type     MenuType
	Visible  bool
	Perms    string
	Icon     string
}

// IsTopLevel reports whether the menu hangs off the root.
func (m Menu) IsTopLevel() bool { return m.ParentID == 0 }
