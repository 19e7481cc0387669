package remote

import (
	"context"

	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/logging"
)

// ReadState lists everything under root. A missing root yields an empty
// state when clean is set, since the run will create it, and
// RemoteUnavailable otherwise. Any other listing failure is RemoteUnavailable.
func ReadState(ctx context.Context, store Store, root string, clean bool) (*State, error) {
	entries, err := store.List(ctx, root)
	switch {
	case err == nil:
	case errors.IsNotFound(err) && clean:
		logging.FromContext(ctx).Info().
			Str("root", root).
			Msg("Remote root does not exist yet, starting from empty state")
		return NewState(root, nil), nil
	case errors.IsNotFound(err):
		return nil, errors.NewRemoteUnavailableError(root, "root directory does not exist", err)
	case errors.IsUnauthorized(err):
		return nil, errors.NewRemoteUnavailableError(root, "authentication failed", err)
	default:
		return nil, errors.NewRemoteUnavailableError(root, "listing failed", err)
	}

	state := NewState(root, entries)
	logging.FromContext(ctx).Debug().
		Str("root", root).
		Int("entries", state.Len()).
		Msg("Read remote state")
	return state, nil
}
