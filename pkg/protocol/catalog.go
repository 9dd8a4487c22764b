package protocol

import (
	"encoding/json"
	"fmt"
	"sort"

	"fbbridge/pkg/protocol/codec"
)

// entry is one row of the catalog.
type entry struct {
	dir       Direction
	responses []Kind
	unbounded bool
	decode    func(c codec.Codec, data []byte) (any, error)
}

// catalog is the closed set of kinds. Nothing adds to it at runtime.
var catalog = map[Kind]entry{
	KindGetEnv:                     req[GetEnv](KindNotifyEnv),
	KindGetUsers:                   req[GetUsers](KindNotifyUsers),
	KindAddUser:                    req[AddUser](KindNotifyUsers),
	KindLogout:                     req[Logout](KindNotifyUsers),
	KindRequestChangeUser:          unbounded(req[RequestChangeUser](KindNotifyUserChanged)),
	KindSelectProject:              req[SelectProject](KindNotifyProjectChanged),
	KindGetSelectedProject:         req[GetSelectedProject](KindNotifyProjectChanged),
	KindSelectAndInitHostingFolder: req[SelectAndInitHostingFolder](KindNotifyHostingFolderReady),
	KindLaunchEmulators:            req[LaunchEmulators](KindNotifyRunningEmulatorInfo),
	KindStopEmulators:              req[StopEmulators](KindNotifyEmulatorsStopped),
	KindGetChannels:                req[GetChannels](KindNotifyChannels),
	KindHostingDeploy:              req[HostingDeploy](KindNotifyHostingDeploy),
	KindGetWorkspaceFolders:        req[GetWorkspaceFolders](KindNotifyWorkspaceFolders),
	KindGetFirebaseJSON:            req[GetFirebaseJSON](KindNotifyFirebaseJSON),
	KindShowMessage:                req[ShowMessage](),

	KindNotifyEnv:                 note[NotifyEnv](),
	KindNotifyUsers:               note[NotifyUsers](),
	KindNotifyUserChanged:         note[NotifyUserChanged](),
	KindNotifyProjectChanged:      note[NotifyProjectChanged](),
	KindNotifyHostingFolderReady:  note[NotifyHostingFolderReady](),
	KindNotifyRunningEmulatorInfo: note[NotifyRunningEmulatorInfo](),
	KindNotifyEmulatorsStopped:    note[NotifyEmulatorsStopped](),
	KindNotifyHostingDeploy:       note[NotifyHostingDeploy](),
	KindNotifyWorkspaceFolders:    note[NotifyWorkspaceFolders](),
	KindNotifyFirebaseJSON:        note[NotifyFirebaseJSON](),
	KindNotifyChannels:            note[NotifyChannels](),
}

func req[T Request](responses ...Kind) entry {
	return entry{dir: UIToHost, responses: responses, decode: decodePayload[T]}
}

func note[T Notification]() entry {
	return entry{dir: HostToUI, decode: decodePayload[T]}
}

func unbounded(e entry) entry {
	e.unbounded = true
	return e
}

// decodePayload pulls the "payload" member out of an encoded wire message.
func decodePayload[T any](c codec.Codec, data []byte) (any, error) {
	var w struct {
		Payload T `json:"payload"`
	}
	if err := c.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w.Payload, nil
}

// DirectionOf returns the catalog direction of k.
func DirectionOf(k Kind) (Direction, bool) {
	e, ok := catalog[k]
	return e.dir, ok
}

// Known reports whether k is in the catalog.
func Known(k Kind) bool {
	_, ok := catalog[k]
	return ok
}

// Responses returns the notification kinds a request may trigger. unbounded
// is true when the host may push the notification any number of times, for
// example to several UI instances.
func Responses(k Kind) (kinds []Kind, unbounded bool) {
	e, ok := catalog[k]
	if !ok || e.dir != UIToHost {
		return nil, false
	}
	return append([]Kind(nil), e.responses...), e.unbounded
}

// Documents reports whether resp is a documented outcome of request kind k.
func Documents(k, resp Kind) bool {
	e, ok := catalog[k]
	if !ok || e.dir != UIToHost {
		return false
	}
	for _, r := range e.responses {
		if r == resp {
			return true
		}
	}
	return false
}

// Kinds lists every kind of direction d in lexical order.
func Kinds(d Direction) []Kind {
	out := make([]Kind, 0, len(catalog))
	for k, e := range catalog {
		if e.dir == d {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseJSON builds a message of kind k from a bare JSON payload. An empty
// payload yields the zero value for k.
func ParseJSON(k Kind, payload []byte) (Message, error) {
	e, ok := catalog[k]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	body, err := json.Marshal(struct {
		Payload json.RawMessage `json:"payload"`
	}{payload})
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrPayloadMismatch, err)
	}
	p, err := e.decode(codec.JSON(), body)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrPayloadMismatch, err)
	}
	return Message{kind: k, payload: p}, nil
}
