package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Project is the parent entity that owns a task list and an item list.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Client string `json:"client,omitempty"`
	Status string `json:"status,omitempty"`
}

// ErrMalformedList is returned when a stored list is not a JSON array of
// the expected record shape.
var ErrMalformedList = errors.New("malformed list")

// DecodeTasks decodes a stored task list. The list may be a JSON array or a
// JSON string holding an encoded array (the REST backend keeps lists as
// JSON-encoded text fields). On malformed input it returns an empty list
// together with an error wrapping ErrMalformedList, so callers can log and
// carry on with an empty editor.
func DecodeTasks(raw []byte) ([]Task, error) {
	tasks, err := decodeList[Task](raw, true)
	for i := range tasks {
		if tasks[i].Subtasks == nil {
			tasks[i].Subtasks = []Subtask{}
		}
	}
	return tasks, err
}

// DecodeItems decodes a stored line-item list; see DecodeTasks.
func DecodeItems(raw []byte) ([]LineItem, error) {
	return decodeList[LineItem](raw, true)
}

// EncodeTasks encodes a task list as a JSON array.
func EncodeTasks(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(tasks)
}

// EncodeItems encodes a line-item list as a JSON array.
func EncodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

func decodeList[R any](raw []byte, unquote bool) ([]R, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []R{}, nil
	}
	if raw[0] == '"' && unquote {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return []R{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
		}
		return decodeList[R]([]byte(inner), false)
	}
	if raw[0] != '[' {
		return []R{}, fmt.Errorf("%w: expected array", ErrMalformedList)
	}
	var out []R
	if err := json.Unmarshal(raw, &out); err != nil {
		return []R{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
	}
	if out == nil {
		out = []R{}
	}
	return out, nil
}
