package navigation

import "github.com/devilmonastery/jobfinder/internal/session"

// Group is a set of screens shown together for one session state
type Group int

const (
	// GroupLoading shows only a loading indicator
	GroupLoading Group = iota
	// GroupAuth holds the sign-in screens
	GroupAuth
	// GroupProfileSetup forces profile setup before the app
	GroupProfileSetup
	// GroupMain is the drawer-based application
	GroupMain
)

func (g Group) String() string {
	switch g {
	case GroupLoading:
		return "loading"
	case GroupAuth:
		return "auth"
	case GroupProfileSetup:
		return "profile_setup"
	case GroupMain:
		return "main"
	default:
		return "unknown"
	}
}

// Screen names a single view
type Screen string

const (
	ScreenLoading      Screen = "loading"
	ScreenLogin        Screen = "login"
	ScreenRegister     Screen = "register"
	ScreenProfileSetup Screen = "profile_setup"
	ScreenHome         Screen = "home"
	ScreenProfile      Screen = "profile"
	ScreenBookmarks    Screen = "bookmarks"
	ScreenJobInfo      Screen = "job_info"
)

// Drawer is the side menu of the main application
type Drawer struct {
	Initial Screen
	Items   []Screen
}

// MainDrawer lists the drawer items in menu order
var MainDrawer = Drawer{
	Initial: ScreenHome,
	Items:   []Screen{ScreenHome, ScreenProfile, ScreenBookmarks},
}

// GroupFor maps a session state to the only group that may be shown for it.
// An unknown state shows the loading indicator.
func GroupFor(state session.State) Group {
	switch state {
	case session.Checking:
		return GroupLoading
	case session.Unauthenticated:
		return GroupAuth
	case session.AuthenticatedIncompleteProfile:
		return GroupProfileSetup
	case session.AuthenticatedComplete:
		return GroupMain
	default:
		return GroupLoading
	}
}

// Screens returns the screens reachable in a group, initial screen first
func (g Group) Screens() []Screen {
	switch g {
	case GroupAuth:
		return []Screen{ScreenLogin, ScreenRegister}
	case GroupProfileSetup:
		// after saving, the user continues into the drawer without a new session check
		screens := []Screen{ScreenProfileSetup}
		screens = append(screens, MainDrawer.Items...)
		return append(screens, ScreenJobInfo)
	case GroupMain:
		return append(append([]Screen{}, MainDrawer.Items...), ScreenJobInfo, ScreenProfileSetup)
	default:
		return []Screen{ScreenLoading}
	}
}

// Initial returns the screen a group opens on
func (g Group) Initial() Screen {
	return g.Screens()[0]
}

// Has reports whether screen is reachable in the group
func (g Group) Has(screen Screen) bool {
	for _, s := range g.Screens() {
		if s == screen {
			return true
		}
	}
	return false
}
