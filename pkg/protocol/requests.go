package protocol

// Request is implemented by every UI→Host payload. The set is sealed.
type Request interface {
	RequestKind() Kind
	isRequest()
}

type request struct{}

func (request) isRequest() {}

// GetEnv asks for the current environment description.
type GetEnv struct{ request }

// GetUsers asks for the known-accounts view.
type GetUsers struct{ request }

// AddUser starts an interactive login.
type AddUser struct{ request }

// Logout removes one account.
type Logout struct {
	request
	Email string `json:"email"`
}

// RequestChangeUser declares a UI-driven active-account switch.
type RequestChangeUser struct {
	request
	User User `json:"user"`
}

// SelectProject starts the project picker for an account.
type SelectProject struct {
	request
	Email string `json:"email"`
}

// GetSelectedProject asks for the active project from .firebaserc or the
// last cached selection.
type GetSelectedProject struct{ request }

// SelectAndInitHostingFolder starts folder selection and hosting scaffolding.
type SelectAndInitHostingFolder struct {
	request
	ProjectID        string `json:"projectId"`
	Email            string `json:"email"`
	SingleAppSupport bool   `json:"singleAppSupport"`
}

// LaunchEmulators starts the emulator suite.
type LaunchEmulators struct {
	request
	FirebaseJSON         FirebaseConfig       `json:"firebaseJson"`
	EmulatorUISelections EmulatorUISelections `json:"emulatorUiSelections"`
}

// StopEmulators asks for a graceful shutdown, exporting state if the launch
// selections asked for it.
type StopEmulators struct{ request }

// GetChannels asks for the hosting preview channels.
type GetChannels struct{ request }

// HostingDeploy deploys hosting for a target.
type HostingDeploy struct {
	request
	Target string `json:"target"`
}

// GetWorkspaceFolders enumerates candidate project roots.
type GetWorkspaceFolders struct{ request }

// GetFirebaseJSON fetches the merged firebase.json and .firebaserc.
type GetFirebaseJSON struct{ request }

// ShowMessage asks the host to display a message. It never produces a
// notification.
type ShowMessage struct {
	request
	Msg     string          `json:"msg"`
	Options *MessageOptions `json:"options,omitempty"`
}

func (GetEnv) RequestKind() Kind                     { return KindGetEnv }
func (GetUsers) RequestKind() Kind                   { return KindGetUsers }
func (AddUser) RequestKind() Kind                    { return KindAddUser }
func (Logout) RequestKind() Kind                     { return KindLogout }
func (RequestChangeUser) RequestKind() Kind          { return KindRequestChangeUser }
func (SelectProject) RequestKind() Kind              { return KindSelectProject }
func (GetSelectedProject) RequestKind() Kind         { return KindGetSelectedProject }
func (SelectAndInitHostingFolder) RequestKind() Kind { return KindSelectAndInitHostingFolder }
func (LaunchEmulators) RequestKind() Kind            { return KindLaunchEmulators }
func (StopEmulators) RequestKind() Kind              { return KindStopEmulators }
func (GetChannels) RequestKind() Kind                { return KindGetChannels }
func (HostingDeploy) RequestKind() Kind              { return KindHostingDeploy }
func (GetWorkspaceFolders) RequestKind() Kind        { return KindGetWorkspaceFolders }
func (GetFirebaseJSON) RequestKind() Kind            { return KindGetFirebaseJSON }
func (ShowMessage) RequestKind() Kind                { return KindShowMessage }
