package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// PlatformCredentialModel
// ---------------------------------------------------------------------------

// PlatformCredentialModel is the persistence model for the Credential domain
// entity. One row per (tenant, platform).
type PlatformCredentialModel struct {
	ID                uuid.UUID                `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_credential_tenant_platform,priority:1"`
	PlatformCode      platform.Code            `gorm:"type:varchar(20);not null;uniqueIndex:idx_credential_tenant_platform,priority:2"`
	UserAccessToken   string                   `gorm:"type:text"`
	UserTokenConsumed bool                     `gorm:"not null;default:false"`
	AppAccessToken    string                   `gorm:"type:text"`
	RefreshToken      string                   `gorm:"type:text"`
	AppTokenExpiresAt *time.Time               ``
	ScopesJSON        string                   `gorm:"type:jsonb;column:scopes"`
	State             platform.CredentialState `gorm:"type:varchar(20);not null;default:'UNPROVISIONED'"`
	CreatedAt         time.Time                `gorm:"not null"`
	UpdatedAt         time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (PlatformCredentialModel) TableName() string {
	return "platform_credentials"
}

// ToDomain converts the persistence model to a domain Credential.
func (m *PlatformCredentialModel) ToDomain() *platform.Credential {
	cred := &platform.Credential{
		ID:                m.ID,
		TenantID:          m.TenantID,
		PlatformCode:      m.PlatformCode,
		UserAccessToken:   m.UserAccessToken,
		UserTokenConsumed: m.UserTokenConsumed,
		AppAccessToken:    m.AppAccessToken,
		RefreshToken:      m.RefreshToken,
		State:             m.State,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.AppTokenExpiresAt != nil {
		cred.AppTokenExpiresAt = *m.AppTokenExpiresAt
	}
	if m.ScopesJSON != "" {
		var scopes []string
		if err := json.Unmarshal([]byte(m.ScopesJSON), &scopes); err == nil {
			cred.Scopes = scopes
		}
	}
	return cred
}

// FromDomain populates the persistence model from a domain Credential.
func (m *PlatformCredentialModel) FromDomain(c *platform.Credential) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.PlatformCode = c.PlatformCode
	m.UserAccessToken = c.UserAccessToken
	m.UserTokenConsumed = c.UserTokenConsumed
	m.AppAccessToken = c.AppAccessToken
	m.RefreshToken = c.RefreshToken
	m.State = c.State
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt

	if c.AppTokenExpiresAt.IsZero() {
		m.AppTokenExpiresAt = nil
	} else {
		expires := c.AppTokenExpiresAt
		m.AppTokenExpiresAt = &expires
	}

	if len(c.Scopes) > 0 {
		if jsonBytes, err := json.Marshal(c.Scopes); err == nil {
			m.ScopesJSON = string(jsonBytes)
		}
	} else {
		m.ScopesJSON = "[]"
	}
}

// ---------------------------------------------------------------------------
// PlatformStoreLinkModel
// ---------------------------------------------------------------------------

// PlatformStoreLinkModel is the persistence model for the StoreLink domain
// entity. One row per (store, platform).
type PlatformStoreLinkModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_store_link_tenant"`
	StoreID         uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_store_link_store_platform,priority:1"`
	PlatformCode    platform.Code        `gorm:"type:varchar(20);not null;uniqueIndex:idx_store_link_store_platform,priority:2"`
	PlatformStoreID string               `gorm:"type:varchar(100);not null;index:idx_store_link_platform_store"`
	Status          platform.StoreStatus `gorm:"type:varchar(20);not null;default:'OFFLINE'"`
	PrepTimeMinutes int                  `gorm:"not null;default:20"`
	AutoAccept      bool                 `gorm:"not null;default:false"`
	SyncEnabled     bool                 `gorm:"not null;default:true"`
	LastMenuSyncAt  *time.Time           `gorm:"index"`
	LastSyncStatus  platform.SyncOutcome `gorm:"type:varchar(20)"`
	LastSyncError   string               `gorm:"type:text"`
	CreatedAt       time.Time            `gorm:"not null"`
	UpdatedAt       time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (PlatformStoreLinkModel) TableName() string {
	return "platform_store_links"
}

// ToDomain converts the persistence model to a domain StoreLink.
func (m *PlatformStoreLinkModel) ToDomain() *platform.StoreLink {
	return &platform.StoreLink{
		ID:              m.ID,
		TenantID:        m.TenantID,
		StoreID:         m.StoreID,
		PlatformCode:    m.PlatformCode,
		PlatformStoreID: m.PlatformStoreID,
		Status:          m.Status,
		PrepTimeMinutes: m.PrepTimeMinutes,
		AutoAccept:      m.AutoAccept,
		SyncEnabled:     m.SyncEnabled,
		LastMenuSyncAt:  m.LastMenuSyncAt,
		LastSyncStatus:  m.LastSyncStatus,
		LastSyncError:   m.LastSyncError,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain StoreLink.
func (m *PlatformStoreLinkModel) FromDomain(l *platform.StoreLink) {
	m.ID = l.ID
	m.TenantID = l.TenantID
	m.StoreID = l.StoreID
	m.PlatformCode = l.PlatformCode
	m.PlatformStoreID = l.PlatformStoreID
	m.Status = l.Status
	m.PrepTimeMinutes = l.PrepTimeMinutes
	m.AutoAccept = l.AutoAccept
	m.SyncEnabled = l.SyncEnabled
	m.LastMenuSyncAt = l.LastMenuSyncAt
	m.LastSyncStatus = l.LastSyncStatus
	m.LastSyncError = l.LastSyncError
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// ---------------------------------------------------------------------------
// ProcessedEventModel
// ---------------------------------------------------------------------------

// ProcessedEventModel is one row of the webhook dedup ledger. The composite
// primary key carries the uniqueness constraint that makes admission atomic.
type ProcessedEventModel struct {
	PlatformCode platform.Code         `gorm:"type:varchar(20);primaryKey"`
	EventID      string                `gorm:"type:varchar(128);primaryKey"`
	ReceivedAt   time.Time             `gorm:"not null;index:idx_processed_event_received_at"`
	Outcome      platform.EventOutcome `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM.
func (ProcessedEventModel) TableName() string {
	return "processed_events"
}

// ToDomain converts the persistence model to a domain ProcessedEvent.
func (m *ProcessedEventModel) ToDomain() *platform.ProcessedEvent {
	return &platform.ProcessedEvent{
		PlatformCode: m.PlatformCode,
		EventID:      m.EventID,
		ReceivedAt:   m.ReceivedAt,
		Outcome:      m.Outcome,
	}
}

// FromDomain populates the persistence model from a domain ProcessedEvent.
func (m *ProcessedEventModel) FromDomain(e *platform.ProcessedEvent) {
	m.PlatformCode = e.PlatformCode
	m.EventID = e.EventID
	m.ReceivedAt = e.ReceivedAt
	m.Outcome = e.Outcome
}
