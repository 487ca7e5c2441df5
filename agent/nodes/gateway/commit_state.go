package gatewaynode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
)

// CommitState writes Next back if, and only if, the turn has not failed.
func CommitState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Err != nil || in.Session == nil {
		return in, nil
	}

	next := in.Next
	next.Touch(in.Now)
	if err := next.Validate(); err != nil {
		in.Err = fmt.Errorf("%w: %v", contractx.ErrInvalidState, err)
		return in, nil
	}

	ok, err := store.CompareAndSwap(ctx, in.Session.Version, &next)
	if err != nil {
		in.Err = fmt.Errorf("commit session=%s: %w", in.SessionID, err)
		return in, nil
	}
	if !ok {
		in.Err = fmt.Errorf("%w: session=%s", statex.ErrVersionConflict, in.SessionID)
		return in, nil
	}

	in.Next = next
	return in, nil
}
