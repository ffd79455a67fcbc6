package session

// Screen names where the app should land for the current session state.
type Screen string

const (
	ScreenLoading Screen = "loading"
	ScreenLogin   Screen = "login"
	ScreenUnlock  Screen = "unlock"
	ScreenHome    Screen = "home"
)

// Landing picks the first screen: wait while loading, go home once logged in,
// ask for the MPIN when a named profile is stored, otherwise full login.
func (s *Store) Landing() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.loading:
		return ScreenLoading
	case s.authenticated:
		return ScreenHome
	case s.profile.Name != "" && s.profile.Mobile != "":
		return ScreenUnlock
	default:
		return ScreenLogin
	}
}
