package episode

import "fmt"

// ErrTickOutOfOrder indicates a tick record that does not follow the previous one
type ErrTickOutOfOrder struct {
	EpisodeID string
	Expected  int
	Got       int
}

func (e *ErrTickOutOfOrder) Error() string {
	return fmt.Sprintf("episode %s: expected tick %d, got %d", e.EpisodeID, e.Expected, e.Got)
}
