package host

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"go.uber.org/zap"

	"fbbridge/pkg/memkv"
	"fbbridge/pkg/protocol"
)

// CLIChannels lists hosting channels through the firebase CLI and caches
// the result per project for TTL.
type CLIChannels struct {
	CLI FirebaseCLI
	KV  *memkv.Store
	TTL time.Duration
}

func (c CLIChannels) Channels(ctx context.Context, projectID string) ([]protocol.Channel, error) {
	key := "channels/" + projectID
	if c.KV != nil && c.TTL > 0 {
		if b, ok := c.KV.Get(key); ok {
			var cached []protocol.Channel
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var res struct {
		Channels []struct {
			Name       string `json:"name"`
			URL        string `json:"url"`
			ExpireTime string `json:"expireTime"`
		} `json:"channels"`
	}
	if err := c.CLI.RunJSON(ctx, &res, "hosting:channel:list", "--project", projectID); err != nil {
		return nil, err
	}
	out := make([]protocol.Channel, 0, len(res.Channels))
	for _, ch := range res.Channels {
		// names are projects/<p>/sites/<s>/channels/<id>
		out = append(out, protocol.Channel{Name: path.Base(ch.Name), URL: ch.URL, ExpireTime: ch.ExpireTime})
	}

	if c.KV != nil && c.TTL > 0 {
		if b, err := json.Marshal(out); err == nil {
			if err := c.KV.Set(key, b, c.TTL); err != nil {
				zap.L().Debug("channel cache full", zap.Error(err))
			}
		}
	}
	return out, nil
}
