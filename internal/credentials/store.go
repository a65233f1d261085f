// Package credentials resolves per-manufacturer camera accounts.
//
// Most camera vendors ship with a well-known default account, so the store
// maps manufacturer-name fragments (e.g. "hikvision") to a username and
// password. Lookup is a case-insensitive substring match against the
// manufacturer string advertised during discovery; when no fragment
// matches, a configurable default pair is returned.
package credentials

import (
	"strings"
	"sync"
)

// Account is a username/password pair for one device.
type Account struct {
	Username string
	Password string
}

// entry pairs a lowercase manufacturer fragment with its account.
// Entries are kept in insertion order because the first matching fragment
// wins a lookup.
type entry struct {
	key     string
	account Account
}

// Store maps manufacturer-name fragments to accounts with a fallback
// default. It is safe for concurrent use; Set may be called while a
// discovery session is resolving credentials.
type Store struct {
	mu       sync.RWMutex
	entries  []entry
	fallback Account
}

// DefaultAccount is the fallback pair used when no fragment matches.
var DefaultAccount = Account{Username: "admin", Password: "123456"}

// NewStore creates a store seeded with common vendor defaults and the
// standard fallback account.
func NewStore() *Store {
	s := &Store{fallback: DefaultAccount}
	s.Set("hikvision", "admin", "qwer123456")
	s.Set("dahua", "admin", "admin")
	return s
}

// NewEmptyStore creates a store with no vendor entries and the given
// fallback account.
func NewEmptyStore(fallback Account) *Store {
	return &Store{fallback: fallback}
}

// Lookup resolves the account for a manufacturer string. The string is
// lower-cased and each stored fragment is tested as a substring of it, in
// insertion order; the first match wins. An empty or unmatched
// manufacturer yields the fallback account.
func (s *Store) Lookup(manufacturer string) Account {
	lower := strings.ToLower(manufacturer)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if strings.Contains(lower, e.key) {
			return e.account
		}
	}
	return s.fallback
}

// Set stores or overwrites the account for a manufacturer fragment. The
// fragment is lower-cased; an existing entry with the same fragment is
// updated in place, keeping its position in the match order.
func (s *Store) Set(manufacturer, username, password string) {
	key := strings.ToLower(manufacturer)
	account := Account{Username: username, Password: password}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].key == key {
			s.entries[i].account = account
			return
		}
	}
	s.entries = append(s.entries, entry{key: key, account: account})
}

// SetFallback replaces the default account returned for unmatched
// manufacturers.
func (s *Store) SetFallback(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = Account{Username: username, Password: password}
}

// Entries returns the stored fragments in match order. Intended for
// display; the returned slice is a copy.
func (s *Store) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}
