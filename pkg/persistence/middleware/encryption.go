package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/lay/pkg/ports"
)

// ErrNotSealed is returned when an encrypted store reads a trace that was
// stored without an envelope.
var ErrNotSealed = errors.New("trace is missing sealed payload")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for sealing new traces.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a
	// trace, so that keys can be rotated without rewriting the store.
	FallbackKeys [][]byte
}

// ParseKey decodes a hex encoded AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// payload is the part of a trace hidden inside the envelope.
type payload struct {
	Ops    []string `json:"ops"`
	Result string   `json:"result,omitempty"`
	Bits   string   `json:"bits,omitempty"`
}

type encryptionMiddleware struct {
	next   ports.TraceStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the operations,
// result and bits of every trace with AES-GCM. Identity and ordering fields
// stay in clear so the wrapped store can still index them.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.TraceStore) ports.TraceStore {
		return &encryptionMiddleware{next: next, config: config}
	}
}

func (m *encryptionMiddleware) Append(ctx context.Context, trace ports.Trace) error {
	plain, err := json.Marshal(payload{Ops: trace.Ops, Result: trace.Result, Bits: trace.Bits})
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt trace: %w", err)
	}

	envelope := ports.Trace{
		ID:        trace.ID,
		SessionID: trace.SessionID,
		Seq:       trace.Seq,
		Call:      trace.Call,
		Time:      trace.Time,
		Sealed:    base64.StdEncoding.EncodeToString(ciphertext),
	}
	return m.next.Append(ctx, envelope)
}

func (m *encryptionMiddleware) Get(ctx context.Context, id string) (ports.Trace, error) {
	envelope, err := m.next.Get(ctx, id)
	if err != nil {
		return ports.Trace{}, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) List(ctx context.Context, sessionID string) ([]ports.Trace, error) {
	envelopes, err := m.next.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]ports.Trace, 0, len(envelopes))
	for _, env := range envelopes {
		tr, err := m.open(env)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, nil
}

func (m *encryptionMiddleware) Sessions(ctx context.Context) ([]string, error) {
	return m.next.Sessions(ctx)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) open(envelope ports.Trace) (ports.Trace, error) {
	if envelope.Sealed == "" {
		return ports.Trace{}, fmt.Errorf("%w: %s", ErrNotSealed, envelope.ID)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return ports.Trace{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return ports.Trace{}, fmt.Errorf("failed to decrypt trace %s: %w", envelope.ID, err)
	}

	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return ports.Trace{}, fmt.Errorf("failed to unmarshal decrypted trace: %w", err)
	}

	tr := envelope
	tr.Sealed = ""
	tr.Ops = p.Ops
	tr.Result = p.Result
	tr.Bits = p.Bits
	return tr, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
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
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
