package domain

// Collection event names
const (
	EventChangeContents = "changeContents" // Root section contents changed (no details)
	EventDelete         = "delete"         // DeleteDetails
	EventRename         = "rename"         // RenameDetails
	EventReorder        = "reorder"        // ReorderDetails
)

// CollectionEvents lists every event a collection can fire
var CollectionEvents = []string{EventChangeContents, EventDelete, EventRename, EventReorder}

// RenameDetails accompanies EventRename
type RenameDetails struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// ReorderDetails accompanies EventReorder
type ReorderDetails struct {
	OldIndex int `json:"oldIndex"`
	NewIndex int `json:"newIndex"`
}

// DeleteDetails accompanies EventDelete
type DeleteDetails struct {
	Index int `json:"index"` // Former position in the order list
}
