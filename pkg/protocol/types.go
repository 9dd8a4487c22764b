package protocol

import "fmt"

// Kind discriminates a message variant. Values are the wire names.
type Kind string

// UI→Host request kinds.
const (
	KindGetEnv                     Kind = "getEnv"
	KindGetUsers                   Kind = "getUsers"
	KindAddUser                    Kind = "addUser"
	KindLogout                     Kind = "logout"
	KindRequestChangeUser          Kind = "requestChangeUser"
	KindSelectProject              Kind = "selectProject"
	KindGetSelectedProject         Kind = "getSelectedProject"
	KindSelectAndInitHostingFolder Kind = "selectAndInitHostingFolder"
	KindLaunchEmulators            Kind = "launchEmulators"
	KindStopEmulators              Kind = "stopEmulators"
	KindGetChannels                Kind = "getChannels"
	KindHostingDeploy              Kind = "hostingDeploy"
	KindGetWorkspaceFolders        Kind = "getWorkspaceFolders"
	KindGetFirebaseJSON            Kind = "getFirebaseJson"
	KindShowMessage                Kind = "showMessage"
)

// Host→UI notification kinds.
const (
	KindNotifyEnv                 Kind = "notifyEnv"
	KindNotifyUsers               Kind = "notifyUsers"
	KindNotifyUserChanged         Kind = "notifyUserChanged"
	KindNotifyProjectChanged      Kind = "notifyProjectChanged"
	KindNotifyHostingFolderReady  Kind = "notifyHostingFolderReady"
	KindNotifyRunningEmulatorInfo Kind = "notifyRunningEmulatorInfo"
	KindNotifyEmulatorsStopped    Kind = "notifyEmulatorsStopped"
	KindNotifyHostingDeploy       Kind = "notifyHostingDeploy"
	KindNotifyWorkspaceFolders    Kind = "notifyWorkspaceFolders"
	KindNotifyFirebaseJSON        Kind = "notifyFirebaseJson"
	KindNotifyChannels            Kind = "notifyChannels"
)

// Direction tags which catalog a kind belongs to.
type Direction uint8

const (
	DirUnknown Direction = iota
	UIToHost
	HostToUI
)

func (d Direction) String() string {
	switch d {
	case UIToHost:
		return "ui->host"
	case HostToUI:
		return "host->ui"
	default:
		return "unknown"
	}
}

// Side identifies which end of the channel a component runs on.
type Side uint8

const (
	SideHost Side = iota + 1
	SideUI
)

// Outbound is the only direction the side may send.
func (s Side) Outbound() Direction {
	switch s {
	case SideHost:
		return HostToUI
	case SideUI:
		return UIToHost
	default:
		return DirUnknown
	}
}

// Inbound is the only direction the side may receive.
func (s Side) Inbound() Direction {
	switch s {
	case SideHost:
		return UIToHost
	case SideUI:
		return HostToUI
	default:
		return DirUnknown
	}
}

func (s Side) String() string {
	switch s {
	case SideHost:
		return "host"
	case SideUI:
		return "ui"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// ContentType hints, mirrored by the codec registry.
const (
	ContentUnknown = "application/octet-stream"
	ContentCBOR    = "application/cbor"
	ContentJSON    = "application/json"
	ContentProto   = "application/x-protobuf"
)
