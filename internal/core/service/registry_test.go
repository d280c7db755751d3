package service

import (
	"context"
	"testing"
	"time"

	"sobot/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

type stubHandler struct {
	command string
}

func (s *stubHandler) Respond(_ context.Context, _ time.Duration, _ *domain.Command) error {
	return nil
}

func (s *stubHandler) GetCommand() string {
	return s.command
}

func (s *stubHandler) GetDescription() string {
	return "stub"
}

type memoryKV struct {
	values map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string]string)}
}

func (m *memoryKV) Get(_ context.Context, namespace, key string) (string, bool, error) {
	value, ok := m.values[namespace+"/"+key]
	return value, ok, nil
}

func (m *memoryKV) Set(_ context.Context, namespace, key, value string) error {
	m.values[namespace+"/"+key] = value
	return nil
}

func (m *memoryKV) Remove(_ context.Context, namespace, key string) error {
	delete(m.values, namespace+"/"+key)
	return nil
}

func TestRegisterBuiltInDuplicate(t *testing.T) {
	r := NewRegistry(nil)

	assert.NoError(t, r.RegisterBuiltIn(&stubHandler{command: "admin"}))
	assert.ErrorIs(t, r.RegisterBuiltIn(&stubHandler{command: "admin"}), domain.ErrDuplicateBuiltIn)
}

func TestRegisterPluginNeverShadowsBuiltIn(t *testing.T) {
	r := NewRegistry(nil)

	builtIn := &stubHandler{command: "admin"}
	assert.NoError(t, r.RegisterBuiltIn(builtIn))
	assert.ErrorIs(t, r.RegisterPlugin(&stubHandler{command: "admin"}), domain.ErrDuplicatePlugin)

	handler, err := r.Resolve("admin", "room-1")
	assert.NoError(t, err)
	assert.Same(t, builtIn, handler)
}

func TestRegisterPluginDuplicate(t *testing.T) {
	r := NewRegistry(nil)

	assert.NoError(t, r.RegisterPlugin(&stubHandler{command: "xkcd"}))
	assert.ErrorIs(t, r.RegisterPlugin(&stubHandler{command: "xkcd"}), domain.ErrDuplicatePlugin)
}

func TestResolveBuiltInIgnoresRoom(t *testing.T) {
	r := NewRegistry(nil)

	assert.NoError(t, r.RegisterBuiltIn(&stubHandler{command: "uptime"}))

	for _, room := range []string{"room-1", "room-2", ""} {
		handler, err := r.Resolve("uptime", room)
		assert.NoError(t, err)
		assert.NotNil(t, handler)
	}
}

func TestResolvePluginRequiresEnablement(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)

	assert.NoError(t, r.RegisterPlugin(&stubHandler{command: "urban"}))

	_, err := r.Resolve("urban", "room-1")
	assert.ErrorIs(t, err, domain.ErrHandlerNotFound)

	assert.NoError(t, r.EnableForRoom(ctx, "room-1", "urban"))

	handler, err := r.Resolve("urban", "room-1")
	assert.NoError(t, err)
	assert.NotNil(t, handler)

	// other rooms stay untouched
	_, err = r.Resolve("urban", "room-2")
	assert.ErrorIs(t, err, domain.ErrHandlerNotFound)
}

func TestEnableDisableRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil)

	assert.NoError(t, r.RegisterPlugin(&stubHandler{command: "urban"}))
	assert.NoError(t, r.EnableForRoom(ctx, "room-1", "urban"))
	assert.NoError(t, r.EnableForRoom(ctx, "room-2", "urban"))
	assert.NoError(t, r.DisableForRoom(ctx, "room-1", "urban"))

	_, err := r.Resolve("urban", "room-1")
	assert.ErrorIs(t, err, domain.ErrHandlerNotFound)

	_, err = r.Resolve("urban", "room-2")
	assert.NoError(t, err)
}

func TestEnableUnknownPlugin(t *testing.T) {
	r := NewRegistry(nil)

	assert.ErrorIs(t, r.EnableForRoom(context.Background(), "room-1", "nope"), domain.ErrUnknownPlugin)
}

func TestEnablementPersistence(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()

	r := NewRegistry(kv)
	assert.NoError(t, r.RegisterPlugin(&stubHandler{command: "urban"}))
	assert.NoError(t, r.RegisterPlugin(&stubHandler{command: "xkcd"}))
	assert.NoError(t, r.EnableForRoom(ctx, "room-1", "urban"))
	assert.NoError(t, r.EnableForRoom(ctx, "room-1", "xkcd"))

	restored := NewRegistry(kv)
	assert.NoError(t, restored.RegisterPlugin(&stubHandler{command: "urban"}))
	assert.NoError(t, restored.RegisterPlugin(&stubHandler{command: "xkcd"}))
	assert.NoError(t, restored.Restore(ctx, "room-1"))

	assert.Equal(t, []string{"urban", "xkcd"}, restored.EnabledForRoom("room-1"))

	_, err := restored.Resolve("urban", "room-1")
	assert.NoError(t, err)
}

func TestListPlugins(t *testing.T) {
	r := NewRegistry(nil)

	assert.NoError(t, r.RegisterPlugin(&stubHandler{command: "xkcd"}))
	assert.NoError(t, r.RegisterPlugin(&stubHandler{command: "github"}))
	assert.NoError(t, r.RegisterBuiltIn(&stubHandler{command: "admin"}))

	assert.Equal(t, []string{"github", "xkcd"}, r.ListPlugins())
}
