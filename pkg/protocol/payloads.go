package protocol

// FirebaseConfig is the merged firebase.json document. It is kept free-form
// so unknown keys survive a round trip through any codec.
type FirebaseConfig map[string]any

// DefaultFirebaseConfig is served when no firebase.json exists.
func DefaultFirebaseConfig() FirebaseConfig {
	return FirebaseConfig{
		"hosting": map[string]any{
			"public": "public",
			"ignore": []any{"firebase.json", "**/.*", "**/node_modules/**"},
		},
		"emulators": map[string]any{
			"ui": map[string]any{"enabled": true},
		},
	}
}

// FirebaseRC mirrors .firebaserc.
type FirebaseRC struct {
	Projects map[string]string `json:"projects"`
	Targets  map[string]any    `json:"targets,omitempty"`
}

// DefaultFirebaseRC is served when no .firebaserc exists.
func DefaultFirebaseRC() FirebaseRC {
	return FirebaseRC{Projects: map[string]string{}}
}

// DefaultProject returns the "default" alias, if any.
func (rc FirebaseRC) DefaultProject() string {
	if rc.Projects == nil {
		return ""
	}
	return rc.Projects["default"]
}

// UserTypeServiceAccount marks an identity that came from application
// default credentials rather than an interactive login.
const UserTypeServiceAccount = "service_account"

// User is an authenticated account known to the host.
type User struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
}

// IsServiceAccount reports whether u is a service-account identity.
func (u User) IsServiceAccount() bool { return u.Type == UserTypeServiceAccount }

// EmulatorMode selects which emulators launchEmulators starts.
type EmulatorMode string

const (
	EmulatorModeHosting EmulatorMode = "hosting"
	EmulatorModeAll     EmulatorMode = "all"
)

// EmulatorUISelections are the launch options chosen in the UI.
type EmulatorUISelections struct {
	ProjectID             string       `json:"projectId"`
	FirebaseJSONPath      string       `json:"firebaseJsonPath,omitempty"`
	ImportStateFolderPath string       `json:"importStateFolderPath,omitempty"`
	ExportStateOnExit     bool         `json:"exportStateOnExit"`
	Mode                  EmulatorMode `json:"mode"`
	DebugLogging          bool         `json:"debugLogging"`
}

// MessageOptions tune how the host renders a showMessage request.
type MessageOptions struct {
	Modal  bool   `json:"modal,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Channel is a hosting preview channel.
type Channel struct {
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	ExpireTime string `json:"expireTime,omitempty"`
}
