package icrcregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/logger"
)

// fakeAgent serves ledger metadata queries per method name and counts how
// often the ledger was hit.
type fakeAgent struct {
	replies map[string]any
	err     error
	queries int
}

func (a *fakeAgent) Query(_ context.Context, _ agent.Principal, method string, _, reply any) error {
	a.queries++
	if a.err != nil {
		return a.err
	}
	value, ok := a.replies[method]
	if !ok {
		return fmt.Errorf("unexpected method %s", method)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, reply)
}

func (a *fakeAgent) Call(context.Context, agent.Principal, string, any, any) error {
	return fmt.Errorf("registry must not mutate state")
}

func (a *fakeAgent) Identity() agent.Principal {
	return agent.AnonymousPrincipal
}

func ckusdtReplies() map[string]any {
	return map[string]any{
		"icrc1_symbol":   "ckUSDT",
		"icrc1_name":     "Chain-key USDT",
		"icrc1_decimals": uint8(6),
		"icrc1_fee":      uint64(10_000),
	}
}

var ckusdtLedger = agent.MustPrincipal("cngnf-vqaaa-aaaar-qag4q-cai")

func TestLookup_ServesWellKnownFromCache(t *testing.T) {
	fake := &fakeAgent{}
	registry, err := NewRegistry(fake, logger.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	token, err := registry.Lookup(context.Background(), domain.ICP.Ledger)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if token.Symbol != "ICP" {
		t.Errorf("Symbol = %q, want ICP", token.Symbol)
	}
	if fake.queries != 0 {
		t.Errorf("fresh cache entry hit the ledger %d times", fake.queries)
	}
}

func TestLookup_FetchesUnknownLedger(t *testing.T) {
	fake := &fakeAgent{replies: ckusdtReplies()}
	registry, err := NewRegistry(fake, logger.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	token, err := registry.Lookup(context.Background(), ckusdtLedger)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if token.Symbol != "ckUSDT" || token.Decimals != 6 || token.Fee != 10_000 {
		t.Errorf("unexpected token %+v", token)
	}
	if fake.queries != 4 {
		t.Errorf("queries = %d, want 4", fake.queries)
	}

	// The second lookup is a cache hit.
	if _, err := registry.Lookup(context.Background(), ckusdtLedger); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if fake.queries != 4 {
		t.Errorf("queries = %d after cached lookup, want 4", fake.queries)
	}
}

func TestLookup_ServesStaleOnRefreshFailure(t *testing.T) {
	fake := &fakeAgent{err: fmt.Errorf("ledger unreachable")}
	registry, err := NewRegistry(fake, logger.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	// Age the seeded entry past its TTL.
	key := domain.ICP.Ledger.Text()
	registry.mu.Lock()
	entry := registry.cache[key]
	entry.fetchedAt = time.Now().Add(-2 * metadataTTL)
	registry.cache[key] = entry
	registry.mu.Unlock()

	token, err := registry.Lookup(context.Background(), domain.ICP.Ledger)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if token.Symbol != "ICP" {
		t.Errorf("Symbol = %q, want stale ICP metadata", token.Symbol)
	}
}

func TestLookup_FailsForUnknownUnreachableLedger(t *testing.T) {
	fake := &fakeAgent{err: fmt.Errorf("ledger unreachable")}
	registry, err := NewRegistry(fake, logger.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if _, err := registry.Lookup(context.Background(), ckusdtLedger); err == nil {
		t.Error("Lookup succeeded for an unknown, unreachable ledger")
	}
}
