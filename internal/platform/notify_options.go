package platform

// AppName is the application name reported to notification services.
const AppName = "FlowMark"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout is how long the notification stays visible, in milliseconds.
	// Zero uses the platform default.
	Timeout int32
}
