// Package bstore persists correlator bundles in a bolt database so the
// expensive engine computation can be amortized across processes.
package bstore

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/boltdb/bolt"
	"gopkg.in/vmihailenco/msgpack.v2"
)

var bucketName = []byte("correlators")

// Store is an on-disk correlator-term store. Entries are keyed by term
// family and a digest of the input linear spectrum; the store assumes
// all entries were produced with one engine configuration (grid,
// extrapolation and window settings), so keep one store file per
// configuration.
type Store struct {
	db *bolt.DB
}

// Open opens or creates a store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bstore: opening %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bstore: creating bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// SpectrumKey digests a linear power spectrum sampled on the
// calculator grid into a store key.
func SpectrumKey(plin []float64) []byte {
	h := md5.New()
	var buf [8]byte
	for _, v := range plin {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return h.Sum(nil)
}

// PutTerm stores a correlator term family for a spectrum key.
func (s *Store) PutTerm(term string, key []byte, v interface{}) error {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("bstore: encoding %s: %w", term, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(termKey(term, key), raw)
	})
}

// GetTerm loads a correlator term family for a spectrum key into v,
// reporting whether it was present.
func (s *Store) GetTerm(term string, key []byte, v interface{}) (bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketName).Get(termKey(term, key)); b != nil {
			raw = append(raw, b...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := msgpack.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("bstore: decoding %s: %w", term, err)
	}
	return true, nil
}

func termKey(term string, key []byte) []byte {
	out := make([]byte, 0, len(term)+1+len(key))
	out = append(out, term...)
	out = append(out, ':')
	return append(out, key...)
}
