// Package signature verifies inbound webhook authenticity using each
// platform's HMAC scheme. Verification always runs against the exact bytes
// received on the wire, before any JSON handling, because re-encoding can
// change byte-for-byte content and invalidate the signature.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// Secrets is the active signing-secret set for one platform. During a
// rotation window both slots are populated and a signature computed with
// either one verifies, enabling zero-downtime rotation.
type Secrets struct {
	Primary   string
	Secondary string
}

// active returns the non-empty secrets in verification order.
func (s Secrets) active() []string {
	out := make([]string, 0, 2)
	if s.Primary != "" {
		out = append(out, s.Primary)
	}
	if s.Secondary != "" {
		out = append(out, s.Secondary)
	}
	return out
}

// Compute returns the lowercase hex HMAC-SHA256 of body under secret.
func Compute(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature header against the raw body. The header is
// hex-encoded HMAC-SHA256; comparison decodes both sides and uses hmac.Equal
// so it is constant-time and case-insensitive. A missing header and an
// unverifiable signature are distinct boundary errors.
func Verify(rawBody []byte, signatureHeader string, secrets Secrets) error {
	if strings.TrimSpace(signatureHeader) == "" {
		return platform.ErrSignatureMissing
	}

	given, err := hex.DecodeString(strings.TrimSpace(signatureHeader))
	if err != nil {
		return platform.ErrSignatureInvalid
	}

	for _, secret := range secrets.active() {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(rawBody)
		if hmac.Equal(given, mac.Sum(nil)) {
			return nil
		}
	}
	return platform.ErrSignatureInvalid
}

// KeyRing holds the signing secrets for every platform and supports rotation
// at runtime. The token manager writes to it; the webhook router reads it.
type KeyRing struct {
	mu      sync.RWMutex
	secrets map[platform.Code]Secrets
}

// NewKeyRing creates a key ring seeded with the configured primary secrets.
func NewKeyRing(primary map[platform.Code]string) *KeyRing {
	secrets := make(map[platform.Code]Secrets, len(primary))
	for code, s := range primary {
		secrets[code] = Secrets{Primary: s}
	}
	return &KeyRing{secrets: secrets}
}

// Secrets returns the active secret set for a platform.
func (k *KeyRing) Secrets(code platform.Code) Secrets {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.secrets[code]
}

// Rotate installs newSecret into the secondary slot, keeping the primary
// valid so in-flight deliveries signed with it are still accepted.
func (k *KeyRing) Rotate(code platform.Code, newSecret string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := k.secrets[code]
	s.Secondary = newSecret
	k.secrets[code] = s
}

// Promote makes the secondary secret the sole primary, ending the rotation
// window.
func (k *KeyRing) Promote(code platform.Code) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := k.secrets[code]
	if s.Secondary == "" {
		return
	}
	k.secrets[code] = Secrets{Primary: s.Secondary}
}
