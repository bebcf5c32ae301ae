package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
)

const (

	// Snapshotter used for container filesystems. fuse-overlayfs provides
	// overlay semantics without requiring root privileges (no mount(2)),
	// allowing packd to run as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client and provides image and container operations.
type Engine struct {
	client *containerd.Client
}

// Connects to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. The
// engine must be closed when no longer needed.
func Connect(address, namespace string) (*Engine, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: connect to containerd: %w", ErrRuntime, err)
	}
	return &Engine{client: client}, nil
}

// Closes the containerd client connection.
func (e *Engine) Close() error {
	return e.client.Close()
}

// Returns the default OCI platform for the host architecture.
func DefaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}

// Imports an OCI archive and starts a build container from it.
//
// The archive is imported into containerd's content store under a
// deterministic tag derived from the path, the layers for the target
// platform are unpacked into the snapshotter, and a container is created
// with a fresh snapshot. A long-running task (sleep infinity) is started
// so that subsequent Exec calls have a running process to attach to. Any
// existing container with the same ID is removed first. Building for a
// platform other than the host requires QEMU / binfmt_misc support in the
// kernel.
func (e *Engine) StartFromArchive(ctx context.Context, path, id, platform string) (*Container, error) {
	tag := archiveTag(path)

	if err := e.importUnderTag(ctx, path, tag, platform); err != nil {
		return nil, err
	}

	return e.startContainer(ctx, tag, id, platform)
}

// Imports an OCI archive under the given tag and unpacks it for the host
// platform.
func (e *Engine) ImportImage(ctx context.Context, path, tag string) error {
	if err := e.importUnderTag(ctx, path, tag, DefaultPlatform()); err != nil {
		return err
	}

	slog.Debug("image imported", "tag", tag)
	return nil
}

// Starts a build container from a previously imported image tag.
func (e *Engine) StartFromImage(ctx context.Context, tag, id, platform string) (*Container, error) {
	if err := e.unpackImage(ctx, tag, platform); err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %w", ErrRuntime, tag, err)
	}

	return e.startContainer(ctx, tag, id, platform)
}

// Removes an image and all containers created from it.
//
// Containers are discovered by querying containerd for records whose image
// field matches the tag. Each container's task is killed before the
// container and its snapshot are deleted.
func (e *Engine) DestroyImage(ctx context.Context, tag string) error {
	ctrs, err := e.client.Containers(ctx, fmt.Sprintf("image==%s", tag))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	for _, ctr := range ctrs {
		if task, taskErr := ctr.Task(ctx, nil); taskErr == nil {
			task.Kill(ctx, syscall.SIGKILL)
			task.Delete(ctx, containerd.WithProcessKill)
		}
		if err := ctr.Delete(ctx, containerd.WithSnapshotCleanup); err != nil && !errdefs.IsNotFound(err) {
			return fmt.Errorf("%w: %w", ErrRuntime, err)
		}
	}

	if err := e.client.ImageService().Delete(ctx, tag); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("image destroyed", "tag", tag)
	return nil
}

// Returns a handle for an existing container.
//
// The container is not loaded or verified; the handle is a lightweight
// reference that resolves the container lazily on subsequent calls.
func (e *Engine) Container(id string) *Container {
	return &Container{
		client:   e.client,
		id:       id,
		platform: DefaultPlatform(),
	}
}

// Imports an archive, tags it, and unpacks it for the target platform.
func (e *Engine) importUnderTag(ctx context.Context, path, tag, platform string) error {
	source, err := e.importArchive(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: import %s: %w", ErrRuntime, path, err)
	}

	if err := e.retagImage(ctx, source, tag); err != nil {
		return fmt.Errorf("%w: tag %s: %w", ErrRuntime, tag, err)
	}

	if err := e.unpackImage(ctx, tag, platform); err != nil {
		return fmt.Errorf("%w: unpack %s: %w", ErrRuntime, tag, err)
	}

	return nil
}

// Imports an OCI archive into the content store.
//
// The archive must contain exactly one image. Multi-platform archives are
// supported (a single OCI index with per-platform manifests); platform
// selection happens later via resolveImage. Multiple index entries would
// mean multiple unrelated images, which is not supported.
func (e *Engine) importArchive(ctx context.Context, path string) (images.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return images.Image{}, err
	}
	defer fh.Close()

	imported, err := e.client.Import(ctx, fh)
	if err != nil {
		return images.Image{}, err
	}

	switch len(imported) {
	case 0:
		return images.Image{}, ErrEmptyArchive
	case 1:
		return imported[0], nil
	default:
		return images.Image{}, ErrMultipleImages
	}
}

// Records an imported image under a new tag, updating any existing record.
//
// The import-time record is removed when its name differs from the tag to
// avoid duplicates.
func (e *Engine) retagImage(ctx context.Context, source images.Image, tag string) error {
	is := e.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}

	return nil
}

// Unpacks the image layers for the target platform into the snapshotter.
func (e *Engine) unpackImage(ctx context.Context, tag, platform string) error {
	image, err := e.resolveImage(ctx, tag, platform)
	if err != nil {
		return err
	}

	return image.Unpack(ctx, snapshotter)
}

// Looks up a tagged image and selects the manifest for the given platform.
func (e *Engine) resolveImage(ctx context.Context, tag, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := e.client.ImageService().Get(ctx, tag)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(e.client, img, platforms.Only(p)), nil
}

// Creates and starts a build container from a resolved image tag.
func (e *Engine) startContainer(ctx context.Context, tag, id, platform string) (*Container, error) {
	c := &Container{
		client:   e.client,
		id:       id,
		platform: platform,
	}

	// Remove any stale container from a previous build with the same ID.
	c.remove(ctx)

	image, err := e.resolveImage(ctx, tag, platform)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrRuntime, tag, err)
	}

	ctr, err := c.create(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: create container %s: %w", ErrRuntime, id, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: start container %s: %w", ErrRuntime, id, err)
	}

	slog.Debug("container started", "id", id, "image", tag)

	return c, nil
}

// Produces a containerd image tag from an archive path.
//
// The path is hashed so the tag is always a valid OCI reference regardless
// of which characters the path contains.
func archiveTag(path string) string {
	h := sha256.Sum256([]byte(path))
	return fmt.Sprintf("import/%s:latest", hex.EncodeToString(h[:]))
}
