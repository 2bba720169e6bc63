package girder

// runPostBuildActions invokes each action once, in registration order,
// with the final graph. The first failure aborts the rest: actions are
// not isolated from each other.
func runPostBuildActions(actions []PostBuildAction, g *Graph) error {
	for i, action := range actions {
		if err := action(g); err != nil {
			return errActionFailed(i, err)
		}
	}
	return nil
}
