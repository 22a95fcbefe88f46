// Package keys loads the merchant and gateway RSA keys and signs request
// payloads with the merchant key.
package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind tells Load which PEM armor to add to a bare base64 key.
type Kind string

const (
	KindPrivate Kind = "PRIVATE KEY"
	KindPublic  Kind = "PUBLIC KEY"
)

var (
	// ErrKeyNotFound is returned when the key file does not exist.
	ErrKeyNotFound = errors.New("key file not found")
	// ErrInvalidKey is returned when the PEM block cannot be parsed as an RSA key.
	ErrInvalidKey = errors.New("invalid RSA key")
	// ErrSignatureMismatch is returned when a signature does not verify.
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Load reads a key file and returns it PEM encoded. Files may hold either a
// full PEM block or the bare base64 body as handed out by the gateway portal.
func Load(path string, kind Kind) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return "", fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	return Format(string(raw), kind), nil
}

// Format wraps a bare base64 key body into PEM armor, 64 columns per line.
// Content that already carries a BEGIN marker is returned trimmed.
func Format(content string, kind Kind) string {
	content = strings.TrimSpace(content)
	if strings.Contains(content, "-----BEGIN") {
		return content
	}

	body := strings.Join(strings.Fields(content), "")

	var b strings.Builder
	b.WriteString("-----BEGIN " + string(kind) + "-----\n")
	for i := 0; i < len(body); i += 64 {
		end := min(i+64, len(body))
		b.WriteString(body[i:end])
		b.WriteByte('\n')
	}
	b.WriteString("-----END " + string(kind) + "-----")
	return b.String()
}

// Signer signs payloads with RSA-SHA256 (PKCS#1 v1.5).
type Signer struct {
	key *rsa.PrivateKey
}

// NewSigner parses a PKCS#8 or PKCS#1 RSA private key.
func NewSigner(privatePEM string) (*Signer, error) {
	block, _ := pem.Decode([]byte(privatePEM))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrInvalidKey)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA private key", ErrInvalidKey)
		}
		return &Signer{key: rsaKey}, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Signer{key: rsaKey}, nil
}

// Sign returns the base64 signature of data.
func (s *Signer) Sign(data []byte) (string, error) {
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// PublicPEM returns the PKIX public key matching the signer, PEM encoded.
func (s *Signer) PublicPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&s.key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: string(KindPublic), Bytes: der})), nil
}

// ParsePublicKey parses a PKIX RSA public key.
func ParsePublicKey(publicPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrInvalidKey)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", ErrInvalidKey)
	}
	return rsaKey, nil
}

// Verify checks a base64 RSA-SHA256 signature of data against publicPEM.
func Verify(publicPEM string, data []byte, signature string) error {
	pub, err := ParsePublicKey(publicPEM)
	if err != nil {
		return err
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	}
	digest := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return ErrSignatureMismatch
	}
	return nil
}
