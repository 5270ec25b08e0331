package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gangway-io/gangway/pkg/adapters/record"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// envelopeKey marks an inputs map that holds an encrypted payload instead
// of plaintext applicant data.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// sensitivePayload is the portion of an entity state that carries applicant
// data. Workflow position stays plaintext so operational tooling can still
// inspect where an entity is without holding a key.
type sensitivePayload struct {
	Inputs  map[string]any  `json:"inputs"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

type encryptionMiddleware struct {
	next   ports.EntityStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts the applicant
// inputs and profile of each entity state using AES-GCM (envelope encryption).
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.EntityStore) ports.EntityStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

// Initialize delegates record creation, then immediately re-saves the fresh
// record sealed. The inner Initialize keeps the atomic conflict check; the
// brief plaintext record carries no applicant data yet.
func (m *encryptionMiddleware) Initialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error) {
	state, err := m.next.Initialize(ctx, entityID, workflowID, initialStepID)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx, entityID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (m *encryptionMiddleware) Load(ctx context.Context, entityID string) (*domain.EntityState, error) {
	envelope, err := m.next.Load(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) Save(ctx context.Context, entityID string, state *domain.EntityState) error {
	if err := record.Validate(state); err != nil {
		return err
	}
	sealed, err := m.seal(state)
	if err != nil {
		return err
	}
	return m.next.Save(ctx, entityID, sealed)
}

// Update reimplements read-merge-write on top of the decrypted state. The
// inner store's Update would merge fields into the opaque envelope instead.
func (m *encryptionMiddleware) Update(ctx context.Context, entityID string, fields map[string]any) (*domain.EntityState, error) {
	current, err := m.Load(ctx, entityID)
	if err != nil {
		return nil, err
	}
	merged, err := record.Merge(current, fields)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx, entityID, merged); err != nil {
		return nil, err
	}
	return m.Load(ctx, entityID)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, entityID string) error {
	return m.next.Delete(ctx, entityID)
}

func (m *encryptionMiddleware) Exists(ctx context.Context, entityID string) (bool, error) {
	return m.next.Exists(ctx, entityID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// seal returns a copy of state whose inputs and profile are replaced by an
// encrypted envelope. Position fields stay plaintext.
func (m *encryptionMiddleware) seal(state *domain.EntityState) (*domain.EntityState, error) {
	payload := sensitivePayload{
		Inputs:  state.Inputs,
		Profile: state.Profile,
	}
	plainText, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sensitive payload: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt entity state: %w", err)
	}

	sealed := state.Clone()
	sealed.Profile = nil
	sealed.Inputs = map[string]any{
		envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
	}
	return sealed, nil
}

// open reverses seal, trying the active key first and then fallbacks.
func (m *encryptionMiddleware) open(envelope *domain.EntityState) (*domain.EntityState, error) {
	encryptedStr, ok := envelope.Inputs[envelopeKey].(string)
	if !ok {
		// Fail secure: once encryption is configured, a record without an
		// envelope is treated as corrupt rather than passed through.
		return nil, errors.New("entity state is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt entity state: %w", err)
	}

	var payload sensitivePayload
	if err := json.Unmarshal(plainText, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted payload: %w", err)
	}

	opened := envelope.Clone()
	opened.Inputs = payload.Inputs
	if opened.Inputs == nil {
		opened.Inputs = make(map[string]any)
	}
	opened.Profile = payload.Profile
	return opened, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
