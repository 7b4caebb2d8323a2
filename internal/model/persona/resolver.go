package persona

import (
	"math/rand"
	"sync"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
)

// Resolver maps agent types to display names and avatars.
type Resolver struct {
	store Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver builds a resolver over the given catalog. src drives every random
// avatar pick; pass a fixed seed in tests.
func NewResolver(store Store, src rand.Source) *Resolver {
	return &Resolver{store: store, rng: rand.New(src)}
}

// Name returns the display name for agentType, or DefaultName when unknown.
func (r *Resolver) Name(agentType string) string {
	if p, ok := r.store.FindByID(agentType); ok {
		return p.Name
	}
	return DefaultName
}

// Avatar returns the avatar URL for agentType. forceRandom skips the catalog
// and picks from RandomAvatars.
func (r *Resolver) Avatar(agentType string, forceRandom bool) string {
	if forceRandom {
		return r.pick(RandomAvatars)
	}

	p, ok := r.store.FindByID(agentType)
	switch {
	case !ok:
		return r.pick(RandomAvatars)
	case len(p.Avatars) > 0:
		return r.pick(p.Avatars)
	case p.Avatar != "":
		return p.Avatar
	default:
		return r.pick(RandomAvatars)
	}
}

// Agent builds the agent participant for a session.
func (r *Resolver) Agent(agentType string) chat.Participant {
	return chat.Participant{
		ID:          chat.AgentID,
		DisplayName: r.Name(agentType),
		AvatarURL:   r.Avatar(agentType, false),
	}
}

// User builds the local participant with a randomized avatar.
func (r *Resolver) User(displayName string) chat.Participant {
	return chat.Participant{
		ID:          chat.UserID,
		DisplayName: displayName,
		AvatarURL:   r.Avatar("", true),
	}
}

func (r *Resolver) pick(pool []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pool[r.rng.Intn(len(pool))]
}
