package credentials

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/gym-dashboard/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// CredentialsFileName is the file created inside the data folder
	CredentialsFileName = "credentials.json"

	nonceSize = 24
)

var _ Repo = (*FileRepo)(nil)

// FileRepo persists the credential fields as one JSON document. Every write replaces the
// whole document through a temp file and rename so a crash never leaves a partial file.
// When a secret is configured the document is sealed with NaCl secretbox.
type FileRepo struct {
	mu   sync.Mutex
	path string
	key  *[32]byte
}

type FileRepoOption func(*FileRepo)

// WithSecret enables at-rest encryption. The box key is the SHA-256 of the secret.
func WithSecret(secret string) FileRepoOption {
	return func(r *FileRepo) {
		if secret == "" {
			return
		}
		key := sha256.Sum256([]byte(secret))
		r.key = &key
	}
}

// NewFileRepo creates the data folder if needed and returns a repo backed by
// folder/credentials.json.
func NewFileRepo(folder string, opts ...FileRepoOption) (*FileRepo, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("[credentials NewFileRepo] create data folder: %w", err)
	}
	r := &FileRepo{path: filepath.Join(folder, CredentialsFileName)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *FileRepo) Get(_ context.Context, key Key) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return "", err
	}
	value, ok := doc[key]
	if !ok {
		return "", errors.Wrapf(errors.ErrNotFound, "credential %q", key)
	}
	return value, nil
}

func (r *FileRepo) Set(_ context.Context, key Key, value string) error {
	return r.update(func(doc map[Key]string) {
		doc[key] = value
	})
}

func (r *FileRepo) Remove(_ context.Context, keys ...Key) error {
	return r.update(func(doc map[Key]string) {
		for _, key := range keys {
			delete(doc, key)
		}
	})
}

func (r *FileRepo) Save(_ context.Context, entry Entry) error {
	return r.update(func(doc map[Key]string) {
		for key, value := range entry.Fields() {
			doc[key] = value
		}
	})
}

func (r *FileRepo) Replace(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(entry.Fields())
}

func (r *FileRepo) Load(_ context.Context) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return Entry{}, err
	}
	return EntryFromFields(doc), nil
}

func (r *FileRepo) update(mutate func(map[Key]string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	mutate(doc)
	return r.write(doc)
}

// read returns an empty document when the file does not exist yet.
func (r *FileRepo) read() (map[Key]string, error) {
	doc := make(map[Key]string)

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStoreUnavailable, "read %s: %v", r.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if r.key != nil {
		if data, err = r.open(data); err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrStoreUnavailable, "parse %s: %v", r.path, err)
	}
	return doc, nil
}

func (r *FileRepo) write(doc map[Key]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if r.key != nil {
		if data, err = r.seal(data); err != nil {
			return err
		}
	}

	tempFile := r.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return errors.Wrapf(errors.ErrStoreUnavailable, "write temp file: %v", err)
	}
	if err := os.Rename(tempFile, r.path); err != nil {
		_ = os.Remove(tempFile)
		return errors.Wrapf(errors.ErrStoreUnavailable, "rename temp file: %v", err)
	}
	return nil
}

func (r *FileRepo) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, r.key), nil
}

func (r *FileRepo) open(box []byte) ([]byte, error) {
	if len(box) < nonceSize+secretbox.Overhead {
		return nil, errors.Wrapf(errors.ErrStoreUnavailable, "sealed credentials too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, r.key)
	if !ok {
		return nil, errors.Wrapf(errors.ErrStoreUnavailable, "credentials could not be decrypted")
	}
	return plain, nil
}
