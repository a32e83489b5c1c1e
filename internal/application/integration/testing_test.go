package integration

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// In-memory store link repository
// ---------------------------------------------------------------------------

type memLinkRepo struct {
	mu    sync.Mutex
	links map[string]*platform.StoreLink
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{links: make(map[string]*platform.StoreLink)}
}

func memLinkKey(storeID uuid.UUID, code platform.Code) string {
	return storeID.String() + ":" + string(code)
}

func (r *memLinkRepo) FindByStoreAndPlatform(_ context.Context, storeID uuid.UUID, code platform.Code) (*platform.StoreLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[memLinkKey(storeID, code)]
	if !ok {
		return nil, platform.ErrStoreLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *memLinkRepo) FindByPlatformStoreID(_ context.Context, code platform.Code, platformStoreID string) (*platform.StoreLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.PlatformCode == code && link.PlatformStoreID == platformStoreID {
			copied := *link
			return &copied, nil
		}
	}
	return nil, platform.ErrStoreLinkNotFound
}

func (r *memLinkRepo) FindEnabledByStore(_ context.Context, storeID uuid.UUID) ([]platform.StoreLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []platform.StoreLink
	for _, link := range r.links {
		if link.StoreID == storeID && link.SyncEnabled {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (r *memLinkRepo) FindAllByStore(_ context.Context, storeID uuid.UUID) ([]platform.StoreLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []platform.StoreLink
	for _, link := range r.links {
		if link.StoreID == storeID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (r *memLinkRepo) Save(_ context.Context, link *platform.StoreLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *link
	r.links[memLinkKey(link.StoreID, link.PlatformCode)] = &copied
	return nil
}

func (r *memLinkRepo) DeleteByTenantAndPlatform(_ context.Context, tenantID uuid.UUID, code platform.Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, link := range r.links {
		if link.TenantID == tenantID && link.PlatformCode == code {
			delete(r.links, key)
		}
	}
	return nil
}

// disable flips sync off directly in storage, simulating an admin toggle
// racing an in-flight sync.
func (r *memLinkRepo) disable(storeID uuid.UUID, code platform.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if link, ok := r.links[memLinkKey(storeID, code)]; ok {
		link.SyncEnabled = false
	}
}

// ---------------------------------------------------------------------------
// Scriptable adapter
// ---------------------------------------------------------------------------

// scriptedAdapter counts outbound calls and fails according to a script of
// per-call errors (nil means success, past the end means success).
type scriptedAdapter struct {
	code platform.Code

	mu        sync.Mutex
	callErrs  []error
	calls     int
	onCall    func(n int)
	lastMenu  *platform.Menu
	lastState platform.StoreStatus
	accepted  []string
}

func (a *scriptedAdapter) Code() platform.Code { return a.code }

func (a *scriptedAdapter) nextErr() error {
	a.mu.Lock()
	call := a.calls
	a.calls++
	hook := a.onCall
	a.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if call < len(a.callErrs) {
		return a.callErrs[call]
	}
	return nil
}

func (a *scriptedAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *scriptedAdapter) PushMenu(_ context.Context, _ platform.AccessToken, _ *platform.StoreLink, menu *platform.Menu) error {
	err := a.nextErr()
	if err == nil {
		a.mu.Lock()
		a.lastMenu = menu
		a.mu.Unlock()
	}
	return err
}

func (a *scriptedAdapter) PushInventory(_ context.Context, _ platform.AccessToken, _ *platform.StoreLink, _ []platform.AvailabilityDelta) error {
	return a.nextErr()
}

func (a *scriptedAdapter) SetStoreStatus(_ context.Context, _ platform.AccessToken, _ *platform.StoreLink, status platform.StoreStatus) error {
	err := a.nextErr()
	if err == nil {
		a.mu.Lock()
		a.lastState = status
		a.mu.Unlock()
	}
	return err
}

func (a *scriptedAdapter) AcceptOrder(_ context.Context, _ platform.AccessToken, _ *platform.StoreLink, platformOrderID string) error {
	err := a.nextErr()
	if err == nil {
		a.mu.Lock()
		a.accepted = append(a.accepted, platformOrderID)
		a.mu.Unlock()
	}
	return err
}

func (a *scriptedAdapter) RegisterStore(_ context.Context, _ string, storeID uuid.UUID) (string, error) {
	return "platform-" + storeID.String()[:8], nil
}

func (a *scriptedAdapter) ParseEvent(_ []byte) (*platform.InboundEvent, error) {
	return nil, platform.ErrEventMalformed
}

func (a *scriptedAdapter) HandleInboundEvent(_ *platform.InboundEvent) (*platform.DomainCommand, error) {
	return nil, platform.ErrUnsupportedEventType
}

// ---------------------------------------------------------------------------
// Fake registry and token manager
// ---------------------------------------------------------------------------

type fakeRegistry struct {
	adapters map[platform.Code]platform.DeliveryPlatform
}

func newFakeRegistry(adapters ...platform.DeliveryPlatform) *fakeRegistry {
	r := &fakeRegistry{adapters: make(map[platform.Code]platform.DeliveryPlatform)}
	for _, a := range adapters {
		r.adapters[a.Code()] = a
	}
	return r
}

func (r *fakeRegistry) Get(code platform.Code) (platform.DeliveryPlatform, error) {
	a, ok := r.adapters[code]
	if !ok {
		return nil, platform.ErrPlatformNotRegistered
	}
	return a, nil
}

func (r *fakeRegistry) All() []platform.DeliveryPlatform {
	out := make([]platform.DeliveryPlatform, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}

type fakeTokens struct {
	mu             sync.Mutex
	token          platform.AccessToken
	getErr         error
	forceRefresh   int
	refreshedToken platform.AccessToken
}

func (f *fakeTokens) GetAppToken(_ context.Context, _ uuid.UUID, _ platform.Code) (platform.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.token, nil
}

func (f *fakeTokens) ForceRefresh(_ context.Context, _ uuid.UUID, _ platform.Code) (platform.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceRefresh++
	if f.refreshedToken != "" {
		f.token = f.refreshedToken
	}
	return f.token, nil
}

func (f *fakeTokens) Provision(_ context.Context, tenantID uuid.UUID, code platform.Code, userAccessToken string, storeID uuid.UUID) (*platform.Credential, *platform.StoreLink, error) {
	cred := platform.NewCredential(tenantID, code, userAccessToken)
	link := platform.NewStoreLink(tenantID, storeID, code, "platform-store")
	return cred, link, nil
}

func (f *fakeTokens) Disconnect(_ context.Context, _ uuid.UUID, _ platform.Code) error { return nil }

func (f *fakeTokens) RotateSecret(_ platform.Code, _ string) {}

func (f *fakeTokens) forceRefreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forceRefresh
}

// ---------------------------------------------------------------------------
// Menu source, command sink, order store, printer
// ---------------------------------------------------------------------------

type fakeMenuSource struct {
	menu   *platform.Menu
	deltas []platform.AvailabilityDelta
}

func (f *fakeMenuSource) MenuForStore(_ context.Context, _ uuid.UUID) (*platform.Menu, error) {
	return f.menu, nil
}

func (f *fakeMenuSource) AvailabilityForStore(_ context.Context, _ uuid.UUID) ([]platform.AvailabilityDelta, error) {
	return f.deltas, nil
}

type recordingSink struct {
	mu       sync.Mutex
	commands []*platform.DomainCommand
	err      error
}

func (s *recordingSink) Dispatch(_ context.Context, cmd *platform.DomainCommand) (*platform.OrderCommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	if s.err != nil {
		return nil, s.err
	}
	return &platform.OrderCommandResult{LocalOrderID: uuid.New()}, nil
}

func (s *recordingSink) dispatched() []*platform.DomainCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*platform.DomainCommand, len(s.commands))
	copy(out, s.commands)
	return out
}

type fakeOrderStore struct {
	mu        sync.Mutex
	created   []*platform.PlatformOrder
	cancelled []string
	statuses  map[string]string
	createErr error
}

func (f *fakeOrderStore) CreateFromPlatform(_ context.Context, _ *platform.StoreLink, order *platform.PlatformOrder) (*platform.OrderCommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, order)
	return &platform.OrderCommandResult{LocalOrderID: uuid.New()}, nil
}

func (f *fakeOrderStore) CancelPlatformOrder(_ context.Context, _ *platform.StoreLink, platformOrderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, platformOrderID)
	return nil
}

func (f *fakeOrderStore) UpdatePlatformOrderStatus(_ context.Context, _ *platform.StoreLink, platformOrderID, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = make(map[string]string)
	}
	f.statuses[platformOrderID] = detail
	return nil
}

type fakePrinter struct {
	mu      sync.Mutex
	printed []string
	err     error
}

func (f *fakePrinter) PrintOrder(_ context.Context, order *platform.PlatformOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.printed = append(f.printed, order.PlatformOrderID)
	return nil
}
