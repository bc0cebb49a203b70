package flows

// Deps groups flow dependency sets. The root engine builds this once and
// delegates operations to the matching flow implementation.
type Deps struct {
	Hydrate HydrateDeps
	Session SessionDeps
	Logout  LogoutDeps
}
