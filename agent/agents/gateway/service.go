package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	authflowx "github.com/tanpawarit/Chative-Policy-Gateway/agent/authflow"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	nodex "github.com/tanpawarit/Chative-Policy-Gateway/agent/nodes/gateway"
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

const defaultPlatform = "eBay"

type Config struct {
	Platform      string
	GuestFallback bool
}

// Reply is the outcome of one turn as seen by a client.
type Reply struct {
	Response      string
	Authenticated bool
	// Agent is the display name, e.g. "eBay Guest Agent".
	Agent     string
	AgentType contractx.AgentType
	Decision  authflowx.Decision
	Needs     statex.Awaiting
}

type Gateway struct {
	store   statex.Store
	models  contractx.Registry
	machine *authflowx.Machine
	locks   *statex.KeyedLock

	graphRunner compose.Runnable[*nodex.GraphState, nodex.GraphOutput]

	platform string
	now      func() time.Time
}

func New(
	store statex.Store,
	models contractx.Registry,
	directory contractx.Directory,
	cfg Config,
) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if models == nil {
		return nil, errors.New("assistant registry is required")
	}

	platform := strings.TrimSpace(cfg.Platform)
	if platform == "" {
		platform = defaultPlatform
	}

	machine, err := authflowx.New(directory, authflowx.Config{
		Platform:      platform,
		GuestFallback: cfg.GuestFallback,
	})
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		store:    store,
		models:   models,
		machine:  machine,
		locks:    statex.NewKeyedLock(),
		platform: platform,
		now:      time.Now,
	}

	graphRunner, err := g.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	g.graphRunner = graphRunner

	return g, nil
}

// HandleMessage runs one turn. Turns of the same session are serialized; the
// session is committed only when the returned error is nil.
func (g *Gateway) HandleMessage(ctx context.Context, sessionID string, text string) (Reply, error) {
	in, err := nodex.ValidateRequest(nodex.GraphInput{SessionID: sessionID, Text: text}, g.now)
	if err != nil {
		return Reply{}, err
	}

	logger := zerolog.Ctx(ctx).With().Str("session_id", in.SessionID).Logger()
	start := time.Now()

	unlock, err := g.locks.Lock(ctx, in.SessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("acquire session lock: %w", err)
	}
	defer unlock()

	out, err := g.graphRunner.Invoke(ctx, in)
	if err == nil {
		err = out.Err
	}
	if err != nil {
		logger.Error().Err(err).
			Str("decision", out.Decision.String()).
			Dur("elapsed", time.Since(start)).
			Msg("turn failed")
		return Reply{}, err
	}

	logger.Info().
		Str("decision", out.Decision.String()).
		Str("agent", string(out.Agent)).
		Bool("authenticated", out.Authenticated).
		Str("needs", string(out.Needs)).
		Dur("elapsed", time.Since(start)).
		Msg("turn handled")

	return Reply{
		Response:      out.Reply,
		Authenticated: out.Authenticated,
		Agent:         out.Agent.DisplayName(g.platform),
		AgentType:     out.Agent,
		Decision:      out.Decision,
		Needs:         out.Needs,
	}, nil
}
