package host

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fbbridge/pkg/memkv"
	"fbbridge/pkg/protocol"
)

const (
	userPrefix = "user/"
	activeKey  = "active-user"
)

// LoginFunc runs an interactive login and returns the new account.
type LoginFunc func(ctx context.Context) (protocol.User, error)

// MemoryAccounts is an AccountStore kept in a memkv store for the life of
// the process.
type MemoryAccounts struct {
	kv    *memkv.Store
	login LoginFunc
}

// NewMemoryAccounts seeds the store with users. login may be nil, in which
// case Add fails with ErrLoginUnavailable.
func NewMemoryAccounts(kv *memkv.Store, users []protocol.User, login LoginFunc) (*MemoryAccounts, error) {
	a := &MemoryAccounts{kv: kv, login: login}
	for _, u := range users {
		if err := a.put(u); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *MemoryAccounts) put(u protocol.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return a.kv.Set(userPrefix+strings.ToLower(u.Email), b, 0)
}

func (a *MemoryAccounts) Users(context.Context) ([]protocol.User, error) {
	keys := a.kv.Keys(userPrefix)
	users := make([]protocol.User, 0, len(keys))
	for _, k := range keys {
		b, ok := a.kv.Get(k)
		if !ok {
			continue
		}
		var u protocol.User
		if err := json.Unmarshal(b, &u); err != nil {
			return nil, fmt.Errorf("account %s: %w", k, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (a *MemoryAccounts) Add(ctx context.Context) ([]protocol.User, error) {
	if a.login == nil {
		return nil, ErrLoginUnavailable
	}
	u, err := a.login(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.put(u); err != nil {
		return nil, err
	}
	return a.Users(ctx)
}

func (a *MemoryAccounts) Logout(ctx context.Context, email string) ([]protocol.User, error) {
	if !a.kv.Delete(userPrefix + strings.ToLower(email)) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, email)
	}
	if active, ok := a.kv.Get(activeKey); ok && strings.EqualFold(string(active), email) {
		a.kv.Delete(activeKey)
	}
	return a.Users(ctx)
}

// SetActive accepts known accounts and service-account identities, which
// are not listed in the store.
func (a *MemoryAccounts) SetActive(_ context.Context, u protocol.User) error {
	if !u.IsServiceAccount() && !a.kv.Exists(userPrefix+strings.ToLower(u.Email)) {
		return fmt.Errorf("%w: %s", ErrUnknownUser, u.Email)
	}
	return a.kv.Set(activeKey, []byte(u.Email), 0)
}

// Active returns the active account email, if any.
func (a *MemoryAccounts) Active() (string, bool) {
	b, ok := a.kv.Get(activeKey)
	return string(b), ok
}

// CLILogin returns a LoginFunc running `firebase login:add`.
func CLILogin(cli FirebaseCLI) LoginFunc {
	return func(ctx context.Context) (protocol.User, error) {
		var res struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		if err := cli.RunJSON(ctx, &res, "login:add"); err != nil {
			return protocol.User{}, err
		}
		if res.User.Email == "" {
			return protocol.User{}, fmt.Errorf("login:add returned no account")
		}
		return protocol.User{Email: res.User.Email}, nil
	}
}
