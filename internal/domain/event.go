package domain

type DirectoryEventType string

const (
	AppCreated DirectoryEventType = "created"
	AppUpdated DirectoryEventType = "updated"
	AppDeleted DirectoryEventType = "deleted"
)

// DirectoryEvent is published after a successful change to the apps collection.
type DirectoryEvent struct {
	Type DirectoryEventType `json:"type"`
	ID   string             `json:"id"`
}

type DirectoryNotifier interface {
	Publish(DirectoryEvent)
}
