package protocol

// Notification is implemented by every Host→UI payload. The set is sealed.
type Notification interface {
	NotificationKind() Kind
	isNotification()
}

type notification struct{}

func (notification) isNotification() {}

// NotifyEnv answers getEnv or pushes an environment change.
type NotifyEnv struct {
	notification
	IsMonospace bool `json:"isMonospace"`
}

// NotifyUsers fully replaces the known-accounts view.
type NotifyUsers struct {
	notification
	Users []User `json:"users"`
}

// NotifyUserChanged confirms the active account. It may be pushed to every
// UI listener.
type NotifyUserChanged struct {
	notification
	Email string `json:"email"`
}

// NotifyProjectChanged confirms the active project.
type NotifyProjectChanged struct {
	notification
	ProjectID string `json:"projectId"`
}

// NotifyHostingFolderReady reports a finished folder selection flow.
type NotifyHostingFolderReady struct {
	notification
	ProjectID  string `json:"projectId"`
	FolderPath string `json:"folderPath"`
}

// NotifyRunningEmulatorInfo reports that the emulators are running.
type NotifyRunningEmulatorInfo struct {
	notification
	UIURL       string `json:"uiUrl"`
	DisplayInfo string `json:"displayInfo"`
}

// NotifyEmulatorsStopped reports that the emulators are not running.
type NotifyEmulatorsStopped struct{ notification }

// NotifyHostingDeploy reports a deploy outcome.
type NotifyHostingDeploy struct {
	notification
	Success    bool   `json:"success"`
	ConsoleURL string `json:"consoleUrl,omitempty"`
	HostingURL string `json:"hostingUrl,omitempty"`
}

// NotifyWorkspaceFolders lists candidate project roots.
type NotifyWorkspaceFolders struct {
	notification
	Folders []string `json:"folders"`
}

// NotifyFirebaseJSON carries the merged config documents.
type NotifyFirebaseJSON struct {
	notification
	FirebaseJSON FirebaseConfig `json:"firebaseJson"`
	FirebaseRC   FirebaseRC     `json:"firebaseRC"`
}

// NotifyChannels lists hosting preview channels.
type NotifyChannels struct {
	notification
	Channels []Channel `json:"channels"`
}

func (NotifyEnv) NotificationKind() Kind                 { return KindNotifyEnv }
func (NotifyUsers) NotificationKind() Kind               { return KindNotifyUsers }
func (NotifyUserChanged) NotificationKind() Kind         { return KindNotifyUserChanged }
func (NotifyProjectChanged) NotificationKind() Kind      { return KindNotifyProjectChanged }
func (NotifyHostingFolderReady) NotificationKind() Kind  { return KindNotifyHostingFolderReady }
func (NotifyRunningEmulatorInfo) NotificationKind() Kind { return KindNotifyRunningEmulatorInfo }
func (NotifyEmulatorsStopped) NotificationKind() Kind    { return KindNotifyEmulatorsStopped }
func (NotifyHostingDeploy) NotificationKind() Kind       { return KindNotifyHostingDeploy }
func (NotifyWorkspaceFolders) NotificationKind() Kind    { return KindNotifyWorkspaceFolders }
func (NotifyFirebaseJSON) NotificationKind() Kind        { return KindNotifyFirebaseJSON }
func (NotifyChannels) NotificationKind() Kind            { return KindNotifyChannels }
