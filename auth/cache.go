package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/oauth2"
)

// Cache is the delegated token cache file. Tokens are keyed by account and scope set.
type Cache struct {
	path string
}

type cacheFile struct {
	Accounts map[string][]entry `json:"accounts"`
}

type entry struct {
	Scopes []string      `json:"scopes"`
	Token  *oauth2.Token `json:"token"`
}

func NewCache(path string) *Cache {
	return &Cache{
		path: path,
	}
}

func (c *Cache) Path() string {
	return c.path
}

// Lookup returns the first cached token whose scopes cover the requested scopes. An empty
// account matches any account, in alphabetical order.
func (c *Cache) Lookup(account string, scopes []string) (string, *oauth2.Token, bool, error) {
	var f cacheFile

	err := c.locked(func() (err error) {
		f, err = c.load()
		return
	})

	if err != nil {
		return "", nil, false, err
	}

	accounts := []string{}
	for k := range f.Accounts {
		if account == "" || k == account {
			accounts = append(accounts, k)
		}
	}

	sort.Strings(accounts)

	for _, k := range accounts {
		for _, e := range f.Accounts[k] {
			if e.Token != nil && e.Token.RefreshToken+e.Token.AccessToken != "" && covers(e.Scopes, scopes) {
				return k, e.Token, true, nil
			}
		}
	}

	return "", nil, false, nil
}

// Accounts returns the cached account names.
func (c *Cache) Accounts() ([]string, error) {
	var f cacheFile

	err := c.locked(func() (err error) {
		f, err = c.load()
		return
	})

	if err != nil {
		return nil, err
	}

	accounts := []string{}
	for k := range f.Accounts {
		accounts = append(accounts, k)
	}

	sort.Strings(accounts)

	return accounts, nil
}

// Store saves a token for an account, replacing any entry with the same scope set.
func (c *Cache) Store(account string, scopes []string, token *oauth2.Token) error {
	return c.locked(func() error {
		f, err := c.load()
		if err != nil {
			return err
		}

		entries := []entry{}
		for _, e := range f.Accounts[account] {
			if !(covers(e.Scopes, scopes) && covers(scopes, e.Scopes)) {
				entries = append(entries, e)
			}
		}

		f.Accounts[account] = append(entries, entry{
			Scopes: scopes,
			Token:  token,
		})

		return c.save(f)
	})
}

func (c *Cache) locked(f func() error) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("error creating token cache directory (%w)", err)
	}

	unlock, err := lock(c.path)
	if err != nil {
		return fmt.Errorf("error locking token cache %v (%w)", c.path, err)
	}

	defer unlock()

	return f()
}

func (c *Cache) load() (cacheFile, error) {
	f := cacheFile{
		Accounts: map[string][]entry{},
	}

	b, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	} else if err != nil {
		return f, fmt.Errorf("error reading token cache %v (%w)", c.path, err)
	}

	if len(b) == 0 {
		return f, nil
	}

	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("invalid token cache %v (%w)", c.path, err)
	}

	if f.Accounts == nil {
		f.Accounts = map[string][]entry{}
	}

	return f, nil
}

func (c *Cache) save(f cacheFile) error {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("error creating token cache (%w)", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing token cache (%w)", err)
	}

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing token cache (%w)", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing token cache (%w)", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("error replacing token cache %v (%w)", c.path, err)
	}

	return nil
}
