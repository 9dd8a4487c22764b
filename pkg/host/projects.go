package host

import (
	"context"
	"fmt"

	"fbbridge/pkg/memkv"
)

const selectedProjectKey = "project"

// PickFunc chooses a project for an account when the workspace has none.
type PickFunc func(ctx context.Context, email string) (string, error)

// SessionProjects remembers the selected project for the life of the
// process, falling back to the workspace .firebaserc default.
type SessionProjects struct {
	kv   *memkv.Store
	cfg  ConfigReader
	pick PickFunc
}

func NewSessionProjects(kv *memkv.Store, cfg ConfigReader, pick PickFunc) *SessionProjects {
	return &SessionProjects{kv: kv, cfg: cfg, pick: pick}
}

// Select prefers the .firebaserc default and otherwise asks the picker.
func (p *SessionProjects) Select(ctx context.Context, email string) (string, error) {
	_, rc := p.cfg.Read(ctx)
	id := rc.DefaultProject()
	if id == "" && p.pick != nil {
		var err error
		if id, err = p.pick(ctx, email); err != nil {
			return "", err
		}
	}
	if id == "" {
		return "", fmt.Errorf("%w for %s", ErrNoProject, email)
	}
	if err := p.kv.Set(selectedProjectKey, []byte(id), 0); err != nil {
		return "", err
	}
	_ = p.kv.Set(selectedProjectKey+"/"+email, []byte(id), 0)
	return id, nil
}

func (p *SessionProjects) Selected(ctx context.Context) (string, error) {
	if b, ok := p.kv.Get(selectedProjectKey); ok {
		return string(b), nil
	}
	_, rc := p.cfg.Read(ctx)
	return rc.DefaultProject(), nil
}

// CLIPicker picks the first project the account can see.
func CLIPicker(cli FirebaseCLI) PickFunc {
	return func(ctx context.Context, email string) (string, error) {
		var projects []struct {
			ProjectID string `json:"projectId"`
		}
		args := []string{"projects:list"}
		if email != "" {
			args = append(args, "--account", email)
		}
		if err := cli.RunJSON(ctx, &projects, args...); err != nil {
			return "", err
		}
		if len(projects) == 0 {
			return "", nil
		}
		return projects[0].ProjectID, nil
	}
}
