// Package confirm asks an operator to approve destructive actions.
//
// Messages come from a Catalog that is built once at startup and never modified.
// The question itself is put to a Prompter, which blocks until the operator answers.
package confirm

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

type Action string

const (
	ActionDisableEvent Action = "disable-event"
	ActionDeleteVenue  Action = "delete-venue"
	ActionDeleteArea   Action = "delete-area"
)

var ErrUnknownAction = errors.New("unknown confirmation action")

var knownActions = []Action{ActionDisableEvent, ActionDeleteVenue, ActionDeleteArea}

func Actions() []Action {
	return slices.Clone(knownActions)
}

type Catalog struct {
	messages map[Action]string
}

// NewCatalog copies messages; every known action must have a non-empty message.
func NewCatalog(messages map[Action]string) (Catalog, error) {
	for _, action := range knownActions {
		if messages[action] == "" {
			return Catalog{}, fmt.Errorf("missing message for action %q", action)
		}
	}

	for action := range messages {
		if !slices.Contains(knownActions, action) {
			return Catalog{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
		}
	}

	return Catalog{messages: maps.Clone(messages)}, nil
}

func DefaultCatalog() Catalog {
	return Catalog{messages: map[Action]string{
		ActionDisableEvent: "Bạn có chắc chắn muốn vô hiệu hóa sự kiện này?",
		ActionDeleteVenue:  "Bạn có chắc chắn muốn xóa địa điểm này?",
		ActionDeleteArea:   "Bạn có chắc chắn muốn xóa khu vực này?",
	}}
}

func (c Catalog) Message(action Action) (string, bool) {
	msg, ok := c.messages[action]
	return msg, ok
}

type Prompter interface {
	// Present shows message and blocks until the operator answers yes or no.
	Present(message string) bool
}

type Dialog struct {
	catalog  Catalog
	prompter Prompter
}

func NewDialog(catalog Catalog, prompter Prompter) *Dialog {
	return &Dialog{
		catalog:  catalog,
		prompter: prompter,
	}
}

func (d *Dialog) Confirm(message string) bool {
	return d.prompter.Present(message)
}

func (d *Dialog) ConfirmAction(action Action) (bool, error) {
	msg, ok := d.catalog.Message(action)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	return d.Confirm(msg), nil
}
