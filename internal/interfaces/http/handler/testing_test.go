package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/application/integration"
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/dedup"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/delivery"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/signature"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/middleware"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type stubLinkRepo struct {
	mu    sync.Mutex
	links map[string]*platform.StoreLink
}

func newStubLinkRepo() *stubLinkRepo {
	return &stubLinkRepo{links: make(map[string]*platform.StoreLink)}
}

func (r *stubLinkRepo) key(storeID uuid.UUID, code platform.Code) string {
	return storeID.String() + ":" + string(code)
}

func (r *stubLinkRepo) FindByStoreAndPlatform(_ context.Context, storeID uuid.UUID, code platform.Code) (*platform.StoreLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[r.key(storeID, code)]
	if !ok {
		return nil, platform.ErrStoreLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *stubLinkRepo) FindByPlatformStoreID(_ context.Context, code platform.Code, platformStoreID string) (*platform.StoreLink, error) {
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

func (r *stubLinkRepo) FindEnabledByStore(_ context.Context, storeID uuid.UUID) ([]platform.StoreLink, error) {
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

func (r *stubLinkRepo) FindAllByStore(_ context.Context, storeID uuid.UUID) ([]platform.StoreLink, error) {
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

func (r *stubLinkRepo) Save(_ context.Context, link *platform.StoreLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *link
	r.links[r.key(link.StoreID, link.PlatformCode)] = &copied
	return nil
}

func (r *stubLinkRepo) DeleteByTenantAndPlatform(_ context.Context, tenantID uuid.UUID, code platform.Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, link := range r.links {
		if link.TenantID == tenantID && link.PlatformCode == code {
			delete(r.links, key)
		}
	}
	return nil
}

type stubTokens struct {
	provisionErr error
}

func (s *stubTokens) GetAppToken(context.Context, uuid.UUID, platform.Code) (platform.AccessToken, error) {
	return "app-token", nil
}

func (s *stubTokens) ForceRefresh(context.Context, uuid.UUID, platform.Code) (platform.AccessToken, error) {
	return "app-token", nil
}

func (s *stubTokens) Provision(_ context.Context, tenantID uuid.UUID, code platform.Code, userAccessToken string, storeID uuid.UUID) (*platform.Credential, *platform.StoreLink, error) {
	if s.provisionErr != nil {
		return nil, nil, s.provisionErr
	}
	cred := platform.NewCredential(tenantID, code, userAccessToken)
	if _, err := cred.ConsumeUserToken(); err != nil {
		return nil, nil, err
	}
	link := platform.NewStoreLink(tenantID, storeID, code, "remote-1")
	return cred, link, nil
}

func (s *stubTokens) Disconnect(context.Context, uuid.UUID, platform.Code) error { return nil }

func (s *stubTokens) RotateSecret(platform.Code, string) {}

type stubSink struct {
	mu       sync.Mutex
	commands []*platform.DomainCommand
}

func (s *stubSink) Dispatch(_ context.Context, cmd *platform.DomainCommand) (*platform.OrderCommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	return &platform.OrderCommandResult{LocalOrderID: uuid.New()}, nil
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}

type stubMenuSource struct{}

func (stubMenuSource) MenuForStore(context.Context, uuid.UUID) (*platform.Menu, error) {
	return &platform.Menu{Name: "Main Menu"}, nil
}

func (stubMenuSource) AvailabilityForStore(context.Context, uuid.UUID) ([]platform.AvailabilityDelta, error) {
	return nil, nil
}

// ---------------------------------------------------------------------------
// Engine fixture
// ---------------------------------------------------------------------------

const handlerTestSecret = "handler-test-secret"

// handlerTestWebhookBodyLimit caps webhook payloads in the fixture, below
// the server-wide limit so the per-route cap is the one exercised.
const handlerTestWebhookBodyLimit = 64 << 10

type apiFixture struct {
	engine  *gin.Engine
	links   *stubLinkRepo
	sink    *stubSink
	server  *httptest.Server
	tenant  uuid.UUID
	storeID uuid.UUID
}

// newAPIFixture assembles the HTTP surface the way main does: middleware,
// registrars, versioned router, with platform traffic against a local mock.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		engine:  gin.New(),
		links:   newStubLinkRepo(),
		sink:    &stubSink{},
		tenant:  uuid.New(),
		storeID: uuid.New(),
	}
	f.engine.Use(middleware.RequestID())
	f.engine.Use(middleware.BodyLimit(1 << 20))

	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(mock.Close)
	f.server = mock

	uberConfig := delivery.NewUberEatsConfig()
	uberConfig.APIBaseURL = mock.URL
	uber, err := delivery.NewUberEatsAdapter(uberConfig)
	require.NoError(t, err)

	registry := delivery.NewRegistry(uber)
	keyRing := signature.NewKeyRing(map[platform.Code]string{
		platform.CodeUberEats: handlerTestSecret,
	})
	store := dedup.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	logger := zap.NewNop()
	tokens := &stubTokens{}
	webhooks := integration.NewWebhookService(registry, keyRing, store, f.sink, logger)
	syncService := integration.NewSyncService(f.links, registry, tokens, stubMenuSource{}, logger)
	provisioning := integration.NewProvisioningService(tokens, f.links, logger)

	router.NewRouter(f.engine).
		Register(NewSystemHandler("test")).
		Register(NewWebhookHandler(webhooks, handlerTestWebhookBodyLimit, logger)).
		Register(NewIntegrationHandler(provisioning, syncService, logger)).
		Setup()

	return f
}

func (f *apiFixture) seedLink(t *testing.T) *platform.StoreLink {
	t.Helper()
	link := platform.NewStoreLink(f.tenant, f.storeID, platform.CodeUberEats, "uber-store-9")
	require.NoError(t, f.links.Save(context.Background(), link))
	return link
}

func (f *apiFixture) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
