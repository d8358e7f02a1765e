package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the database.
	ErrKeyNotFound = errors.New("key not found")
)

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// Get retrieves a value by key and unmarshals it into v.
func (d *DB) Get(key string, v model.Model) error {
	return d.db.View(func(txn *badger.Txn) error {
		return getTxn(txn, key, v)
	})
}

// Set stores a model in the database.
func (d *DB) Set(v model.Model) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return setTxn(txn, v)
	})
}

// Delete removes a key from the database.
func (d *DB) Delete(key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Exists checks if a key exists in the database.
func (d *DB) Exists(key string) (bool, error) {
	var exists bool
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		exists, err = existsTxn(txn, key)
		return err
	})
	return exists, err
}

// ListByPrefix retrieves all keys with the given prefix.
func (d *DB) ListByPrefix(prefix string) ([]string, error) {
	var keys []string
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// GetAllByPrefix retrieves all values with the given prefix.
func GetAllByPrefix[T model.Model](d *DB, prefix string, newFunc func() T) ([]T, error) {
	return GetFilteredByPrefix(d, prefix, newFunc, nil)
}

// GetFilteredByPrefix retrieves the values with the given prefix that keep
// accepts. A nil keep accepts everything.
func GetFilteredByPrefix[T model.Model](d *DB, prefix string, newFunc func() T, keep func(T) bool) ([]T, error) {
	var results []T
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 100
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				v := newFunc()
				if err := json.Unmarshal(val, v); err != nil {
					return err
				}
				v.SetKey(string(item.Key()))
				if keep == nil || keep(v) {
					results = append(results, v)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return results, err
}

// ResolveByPrefix loads the single record whose id is ref or starts with ref,
// so users can type the short ids the CLI prints.
func ResolveByPrefix[T model.Model](d *DB, prefix, ref string, newFunc func() T) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, ErrKeyNotFound
	}

	exact := newFunc()
	err := d.Get(model.GenerateKey(prefix, ref), exact)
	if err == nil {
		return exact, nil
	}
	if !IsErrKeyNotFound(err) {
		return zero, err
	}

	matches, err := GetAllByPrefix(d, model.GenerateKey(prefix, ref), newFunc)
	if err != nil {
		return zero, err
	}
	switch len(matches) {
	case 0:
		return zero, ErrKeyNotFound
	case 1:
		return matches[0], nil
	default:
		return zero, apperrors.NewUserErrorWithField("id", ref,
			"Several records match this id", "").WithSentinel(apperrors.ErrAmbiguousID)
	}
}

func getTxn(txn *badger.Txn, key string, v model.Model) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		return err
	}

	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return err
		}
		v.SetKey(key)
		return nil
	})
}

func setTxn(txn *badger.Txn, v model.Model) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(v.GetKey()), data)
}

func existsTxn(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NotFoundError reports a missing record. It matches both ErrKeyNotFound and
// the domain sentinel (ErrInvoiceNotFound, ...).
type NotFoundError struct {
	Kind error
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Ref)
}

func (e *NotFoundError) Unwrap() []error {
	return []error{e.Kind, ErrKeyNotFound}
}

func notFound(err error, kind error, ref string) error {
	if IsErrKeyNotFound(err) {
		return &NotFoundError{Kind: kind, Ref: ref}
	}
	return err
}
