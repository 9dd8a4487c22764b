package host

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"fbbridge/pkg/protocol"
)

// ExecDeployer runs `firebase deploy --only hosting`.
type ExecDeployer struct {
	CLI       FirebaseCLI
	ExtraArgs []string
}

func (d ExecDeployer) Deploy(ctx context.Context, projectID, target string) (protocol.NotifyHostingDeploy, error) {
	only := "hosting"
	if target != "" {
		only += ":" + target
	}
	args := append([]string{"deploy", "--only", only, "--project", projectID}, d.ExtraArgs...)

	out := protocol.NotifyHostingDeploy{ConsoleURL: consoleURL(projectID)}
	var res map[string]any
	if err := d.CLI.RunJSON(ctx, &res, args...); err != nil {
		if errors.Is(err, ErrCLIFailed) {
			zap.L().Warn("deploy failed", zap.String("project", projectID), zap.String("target", target), zap.Error(err))
			return out, nil
		}
		return protocol.NotifyHostingDeploy{}, err
	}
	out.Success = true
	out.HostingURL = hostingURL(res, projectID)
	return out, nil
}

func consoleURL(projectID string) string {
	return "https://console.firebase.google.com/project/" + projectID + "/overview"
}

// hostingURL derives the site URL from a deploy result such as
// {"hosting": "sites/my-site/versions/abc"}.
func hostingURL(res map[string]any, projectID string) string {
	site := projectID
	var version string
	switch h := res["hosting"].(type) {
	case string:
		version = h
	case map[string]any:
		for _, v := range h {
			if s, ok := v.(string); ok {
				version = s
				break
			}
		}
	}
	if parts := strings.Split(version, "/"); len(parts) >= 2 && parts[0] == "sites" {
		site = parts[1]
	}
	return "https://" + site + ".web.app"
}
