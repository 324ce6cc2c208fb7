package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var templatesBucket = []byte("templates")

// Kind identifies which assembler a template feeds.
type Kind string

const (
	KindIOSWebview  Kind = "ios_webview"
	KindInteractive Kind = "interactive"
	KindList        Kind = "list"
	KindCarousel    Kind = "carousel"
)

// Valid reports whether k is a known template kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIOSWebview, KindInteractive, KindList, KindCarousel:
		return true
	}
	return false
}

// Template is a stored message definition. Params holds the compose
// request in its wire form and is only interpreted at compose time.
type Template struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      Kind            `json:"kind"`
	Params    json.RawMessage `json:"params"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Store interface {
	Save(t Template) (Template, error)
	Get(id string) (*Template, error)
	List() ([]Template, error)
	Delete(id string) error
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(templatesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating templates bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save stores a template, assigning an ID and creation time when it has
// none, and returns the stored value.
func (s *BoltStore) Save(t Template) (Template, error) {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return tx.Bucket(templatesBucket).Put([]byte(t.ID), data)
	})
	if err != nil {
		return Template{}, err
	}
	return t, nil
}

func (s *BoltStore) Get(id string) (*Template, error) {
	var t Template
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(templatesBucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &t)
	})
	if err != nil {
		return nil, err
	}
	if t.ID == "" {
		return nil, nil
	}
	return &t, nil
}

func (s *BoltStore) List() ([]Template, error) {
	var templates []Template
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(templatesBucket).ForEach(func(_, v []byte) error {
			var t Template
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			templates = append(templates, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(templatesBucket).Delete([]byte(id))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
