package platform

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCode(t *testing.T) {
	code, ok := ParseCode("UBEREATS")
	assert.True(t, ok)
	assert.Equal(t, CodeUberEats, code)

	code, ok = ParseCode("FOODPANDA")
	assert.True(t, ok)
	assert.Equal(t, CodeFoodpanda, code)

	_, ok = ParseCode("doordash")
	assert.False(t, ok)
	_, ok = ParseCode("")
	assert.False(t, ok)
}

func TestCode_IsValid(t *testing.T) {
	assert.True(t, CodeUberEats.IsValid())
	assert.True(t, CodeFoodpanda.IsValid())
	assert.False(t, Code("GRUBHUB").IsValid())
}

func TestSyncOperation_IsValid(t *testing.T) {
	assert.True(t, SyncOperationMenu.IsValid())
	assert.True(t, SyncOperationInventory.IsValid())
	assert.True(t, SyncOperationStatus.IsValid())
	assert.False(t, SyncOperation("prices").IsValid())
}

func TestStoreStatus_IsValid(t *testing.T) {
	assert.True(t, StoreStatusOnline.IsValid())
	assert.True(t, StoreStatusBusy.IsValid())
	assert.True(t, StoreStatusOffline.IsValid())
	assert.False(t, StoreStatus("CLOSED_FOREVER").IsValid())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrPlatformUnavailable))
	assert.True(t, IsTransient(ErrPlatformRateLimited))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", ErrPlatformUnavailable)))

	assert.False(t, IsTransient(ErrPlatformRejected))
	assert.False(t, IsTransient(ErrPlatformAuthFailed))
	assert.False(t, IsTransient(nil))
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(ErrPlatformAuthFailed))
	assert.True(t, IsAuthFailure(fmt.Errorf("ubereats: %w", ErrPlatformAuthFailed)))
	assert.False(t, IsAuthFailure(ErrPlatformRejected))
}

func TestMenu_ItemCount(t *testing.T) {
	menu := &Menu{
		Categories: []MenuCategory{
			{Items: []MenuItem{{}, {}}},
			{Items: []MenuItem{{}}},
			{},
		},
	}
	assert.Equal(t, 3, menu.ItemCount())
}
