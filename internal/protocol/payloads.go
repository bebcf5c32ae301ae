package protocol

import "time"

// A page of results plus the information needed to request the next page.
type Paginated[T any] struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Data  []T `json:"data"`
}

// Asks the daemon to execute a packaging recipe.
//
// The recipe file travels as a [File] payload; the daemon selects the
// parser from the file name. Root is the build context for resolving copy
// sources. Tag, when set, registers the build result in the tag registry.
type BuildRequest struct {
	Recipe     File     `json:"recipe"`
	Resource   string   `json:"resource"`
	Output     string   `json:"output"`
	Root       string   `json:"root"`
	Entrypoint []string `json:"entrypoint,omitempty"`
	Platforms  []string `json:"platforms,omitempty"`
	Tag        string   `json:"tag,omitempty"`
}

// Reports a completed build.
type BuildResult struct {
	Output string     `json:"output"`
	Tag    *TagRecord `json:"tag,omitempty"`
}

// Carries an error message back to the client.
type ErrorResult struct {
	Message string `json:"message"`
}

// Reports daemon health and counters.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
	Tags    int    `json:"tags"`
}

// Asks the daemon to import an OCI archive under a tag.
type ImageImportRequest struct {
	Path string `json:"path"`
	Tag  string `json:"tag"`
}

// Asks the daemon to start a container from an imported image tag.
type ImageStartRequest struct {
	Tag string `json:"tag"`
	ID  string `json:"id"`
}

// Asks the daemon to remove an image and its containers.
type ImageDestroyRequest struct {
	Tag string `json:"tag"`
}

// Identifies a container for stop, destroy, and status commands.
type ContainerRequest struct {
	ID string `json:"id"`
}

// Reports a container's state.
type ContainerStatusResult struct {
	State ContainerState `json:"state"`
}

// Asks the daemon to run a command inside a container.
type ContainerExecRequest struct {
	ID   string   `json:"id"`
	Args []string `json:"args"`
}

// Reports the outcome of a container exec.
type ContainerExecResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// A registered tag.
type TagRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

// Creates a tag pointing at a target image or existing tag.
type TagCreateRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Repoints an existing tag.
type TagUpdateRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Looks up a tag by name.
type TagGetRequest struct {
	Name string `json:"name"`
}

// Removes a tag by name.
type TagDeleteRequest struct {
	Name string `json:"name"`
}

// Requests a page of tags, newest first, optionally filtered by target.
type TagListRequest struct {
	Skip   int    `json:"skip"`
	Limit  int    `json:"limit"`
	Target string `json:"target,omitempty"`
}

// A page of tag records.
type TagListResult = Paginated[TagRecord]
