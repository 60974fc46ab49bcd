package auth

// SetRefreshSnapshotHook installs a function that runs after a refresh has
// read the cached token and before its exchange starts.
func SetRefreshSnapshotHook(s *SessionService, hook func()) {
	s.refreshSnapshotHook = hook
}
