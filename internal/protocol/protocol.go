package protocol

import (
	"encoding/json"
	"fmt"
)

// Identifies a daemon command or response kind.
type Command string

const (
	CmdBuild Command = "build"

	CmdImageImport  Command = "image-import"
	CmdImageStart   Command = "image-start"
	CmdImageDestroy Command = "image-destroy"

	CmdContainerStop    Command = "container-stop"
	CmdContainerDestroy Command = "container-destroy"
	CmdContainerStatus  Command = "container-status"
	CmdContainerExec    Command = "container-exec"

	CmdTagCreate Command = "tag-create"
	CmdTagUpdate Command = "tag-update"
	CmdTagGet    Command = "tag-get"
	CmdTagList   Command = "tag-list"
	CmdTagDelete Command = "tag-delete"

	CmdStatus   Command = "status"
	CmdShutdown Command = "shutdown"

	// Response kinds.
	CmdOK    Command = "ok"
	CmdError Command = "error"
)

// Reported state of a build container.
type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerStopped    ContainerState = "stopped"
	ContainerNotCreated ContainerState = "not-created"
)

// The wire framing for one message.
//
// Messages are JSON objects terminated by a newline; each connection
// carries exactly one request and one response.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Serializes a command and payload into an envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}

// Parses an envelope from a single wire message.
func Decode(data []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("envelope missing command")
	}
	return env, env.Payload, nil
}

// Parses a typed payload from its raw JSON form.
func DecodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}
