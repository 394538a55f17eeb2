package genmon

import "sync"

// PublishDecision is the outcome of observing an entity descriptor.
type PublishDecision int

const (
	// Skip means the entity's current fingerprint has already been
	// published; no discovery message is needed.
	Skip PublishDecision = iota

	// PublishNew means the entity has never had a discovery config
	// published.
	PublishNew

	// PublishUpdate means the entity was published before but its
	// fingerprint has changed, so the config must be re-published.
	PublishUpdate
)

// String returns the decision name for logging.
func (d PublishDecision) String() string {
	switch d {
	case PublishNew:
		return "new"
	case PublishUpdate:
		return "update"
	default:
		return "skip"
	}
}

type registryEntry struct {
	descriptor EntityDescriptor
	// published is the fingerprint of the last successfully published
	// discovery config, or empty if none has been published yet.
	published string
}

// Registry tracks which entities have had their discovery config
// published. It enforces at-most-once publication per distinct
// fingerprint: duplicate telemetry deliveries, retained-message replays
// on reconnect, and repeated observations all collapse to a single
// discovery publish.
//
// Entries are never evicted; telemetry entities are assumed stable for
// the process lifetime. State is in-memory only and lost on restart,
// which is harmless because discovery configs are retained by the
// broker.
//
// With paho's default ordered delivery, handler callbacks run one at a
// time on the client's router goroutine, so the observe-publish-commit
// sequence in the bridge never interleaves. The mutex keeps the
// registry correct for any other caller, such as the startup button
// publishes.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
	}
}

// Observe records a sighting of an entity and decides whether its
// discovery config needs publishing. The decision compares against the
// last fingerprint committed via MarkPublished, not the last observed
// one, so a failed publish leaves the entity due for another attempt on
// the next message.
func (r *Registry) Observe(d EntityDescriptor) PublishDecision {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[d.ID]
	if !ok {
		r.entries[d.ID] = &registryEntry{descriptor: d}
		return PublishNew
	}

	entry.descriptor = d
	switch entry.published {
	case "":
		return PublishNew
	case d.Fingerprint():
		return Skip
	default:
		return PublishUpdate
	}
}

// MarkPublished commits a descriptor's fingerprint after its discovery
// config was successfully published. Call only on publish success.
func (r *Registry) MarkPublished(d EntityDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[d.ID]
	if !ok {
		entry = &registryEntry{descriptor: d}
		r.entries[d.ID] = entry
	}
	entry.published = d.Fingerprint()
}

// Len returns the number of entities observed so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
