// Package runtime manages containers backed by containerd.
//
// An [Engine] connects to a containerd daemon and provides image import
// and container creation. OCI archives are imported, tagged, unpacked for
// the target platform, and used to create containers with overlayfs
// snapshots.
//
// Each [Container] wraps a running containerd task. Commands can be
// executed inside the container, files can be copied in and out as tar
// streams, and the final filesystem state can be committed and exported
// as a new OCI archive with its process configuration ([ImageConfig])
// baked into the image config. When the container is no longer needed it
// should be destroyed to release its snapshot and task resources.
//
// Example usage:
//
//	eng, err := runtime.Connect("/run/containerd/containerd.sock", "packd")
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	ctr, err := eng.StartFromArchive(ctx, "python.tar", "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "pip install -r requirements.txt", nil, "/app")
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Cmd:     []string{"python", "bot.py"},
//	    Workdir: "/app",
//	})
package runtime
