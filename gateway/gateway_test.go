package gateway

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/logger"
	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func testLogger() types.Logger {
	return logger.NewZapWrapper(zap.NewNop())
}

func newTestLookup(volatile types.VolatileTier, durable types.DurableTier) *Lookup {
	return NewLookup(volatile, durable, testLogger(), nil, time.Second)
}

type fakeVolatile struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeVolatile() *fakeVolatile {
	return &fakeVolatile{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeVolatile) Start() error    { return nil }
func (f *fakeVolatile) Stop() error     { return nil }
func (f *fakeVolatile) IsRunning() bool { return true }

func (f *fakeVolatile) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	return value, ok
}

func (f *fakeVolatile) Set(key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeVolatile) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	delete(f.ttls, key)
	return nil
}

func (f *fakeVolatile) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

func (f *fakeVolatile) ttlOf(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[key]
}

type fakeDurable struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	gets   int
	sets   int
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{data: make(map[string]string)}
}

func (f *fakeDurable) Start() error    { return nil }
func (f *fakeDurable) Stop() error     { return nil }
func (f *fakeDurable) IsRunning() bool { return true }

func (f *fakeDurable) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeDurable) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.data[key] = value
	return nil
}

// fakeClient is an in-memory stand-in for the upstream node. Missing
// entries surface as errors, the way a real RPC failure would.
type fakeClient struct {
	mu            sync.Mutex
	subscriptions []string
	subErr        error
	history       map[string][]types.RootEntry
	historyErr    error
	keys          map[string][]string
	keysErr       error
	values        map[string]string
	valueErr      error
	proofs        map[string]string
	proofErr      error
	address       string
	addressErr    error
	calls         map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		history: make(map[string][]types.RootEntry),
		keys:    make(map[string][]string),
		values:  make(map[string]string),
		proofs:  make(map[string]string),
		calls:   make(map[string]int),
	}
}

func (c *fakeClient) record(name string) {
	c.calls[name]++
}

func (c *fakeClient) callCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *fakeClient) ListSubscriptions(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("subscriptions")
	if c.subErr != nil {
		return nil, c.subErr
	}
	return c.subscriptions, nil
}

func (c *fakeClient) GetRootHistory(ctx context.Context, storeID string) ([]types.RootEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("root_history")
	if c.historyErr != nil {
		return nil, c.historyErr
	}
	return c.history[storeID], nil
}

func (c *fakeClient) GetKeys(ctx context.Context, storeID, rootHash string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("keys")
	if c.keysErr != nil {
		return nil, c.keysErr
	}
	keys, ok := c.keys[storeID]
	if !ok {
		return nil, types.ErrDataLayerBadResponse
	}
	return keys, nil
}

func (c *fakeClient) GetValue(ctx context.Context, storeID, hexKey, rootHash string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("value")
	if c.valueErr != nil {
		return "", c.valueErr
	}
	value, ok := c.values[storeID+"|"+hexKey]
	if !ok {
		return "", types.ErrDataLayerBadResponse
	}
	return value, nil
}

func (c *fakeClient) GetProof(ctx context.Context, storeID string, hexKeys []string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("proof")
	if c.proofErr != nil {
		return "", c.proofErr
	}
	proof, ok := c.proofs[storeID+"|"+hexKeys[0]]
	if !ok {
		return "", types.ErrDataLayerBadResponse
	}
	return proof, nil
}

func (c *fakeClient) ResolveAddress(ctx context.Context, configuredDefault string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("address")
	if c.addressErr != nil {
		return "", c.addressErr
	}
	if c.address == "" {
		return configuredDefault, nil
	}
	return c.address, nil
}

type fakeSink struct {
	mu      sync.Mutex
	stores  []string
	panicky bool
}

func (s *fakeSink) Register(storeID string) {
	if s.panicky {
		panic("sink is down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores = append(s.stores, storeID)
}

func (s *fakeSink) registrations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.stores))
	copy(out, s.stores)
	return out
}
