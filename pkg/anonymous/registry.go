package anonymous

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// Registry manages the pool of reserved anonymous display names. Anonymous
// askers get a numbered display name on creation; deleting the account must
// release the number back to the pool so it can be handed out again.
type Registry interface {
	Reserve(ctx context.Context) (string, error)
	Release(ctx context.Context, username string) error
}

var usernamePattern = regexp.MustCompile(`^(.+?)([0-9]+)$`)

// InMemRegistry keeps the reserved ids in process memory. The registry only
// has to be consistent within one service instance; anonymous accounts are
// short-lived by design.
type InMemRegistry struct {
	prefix string

	mu       sync.Mutex
	reserved map[int]struct{}
}

// NewInMemRegistry creates a registry generating names with the given prefix.
func NewInMemRegistry(prefix string) *InMemRegistry {
	return &InMemRegistry{
		prefix:   prefix,
		reserved: make(map[int]struct{}),
	}
}

// Reserve hands out the lowest free numbered name.
func (r *InMemRegistry) Reserve(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := 1
	for {
		if _, taken := r.reserved[id]; !taken {
			break
		}
		id++
	}
	r.reserved[id] = struct{}{}
	return r.prefix + strconv.Itoa(id), nil
}

// Release returns a reserved name back to the pool. Names without a registry
// number belong to registered accounts and are skipped; releasing a name that
// is not reserved is likewise a no-op, since the deletion workflow may run
// twice for the same account.
func (r *InMemRegistry) Release(_ context.Context, username string) error {
	match := usernamePattern.FindStringSubmatch(username)
	if match == nil {
		return nil
	}
	id, err := strconv.Atoi(match[2])
	if err != nil {
		return fmt.Errorf("failed to parse registry id of %q: %w", username, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reserved, id)
	return nil
}
