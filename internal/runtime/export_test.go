package runtime

import (
	"reflect"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestImageConfigApply(t *testing.T) {
	base := func() *ocispec.Image {
		return &ocispec.Image{
			Config: ocispec.ImageConfig{
				Env:        []string{"PATH=/usr/bin"},
				Cmd:        []string{"/bin/sh"},
				WorkingDir: "/",
			},
		}
	}

	t.Run("zero config leaves base untouched", func(t *testing.T) {
		config := base()
		ImageConfig{}.apply(config)
		if !reflect.DeepEqual(config, base()) {
			t.Errorf("config = %+v", config)
		}
	})

	t.Run("env merges over base", func(t *testing.T) {
		config := base()
		ImageConfig{Env: []string{"PYTHONDONTWRITEBYTECODE=1"}}.apply(config)
		want := []string{"PATH=/usr/bin", "PYTHONDONTWRITEBYTECODE=1"}
		if !reflect.DeepEqual(config.Config.Env, want) {
			t.Errorf("env = %v, want %v", config.Config.Env, want)
		}
	})

	t.Run("workdir overrides", func(t *testing.T) {
		config := base()
		ImageConfig{Workdir: "/app"}.apply(config)
		if config.Config.WorkingDir != "/app" {
			t.Errorf("workdir = %q", config.Config.WorkingDir)
		}
	})

	t.Run("entrypoint clears inherited cmd", func(t *testing.T) {
		config := base()
		ImageConfig{Entrypoint: []string{"/entrypoint"}}.apply(config)
		if !reflect.DeepEqual(config.Config.Entrypoint, []string{"/entrypoint"}) {
			t.Errorf("entrypoint = %v", config.Config.Entrypoint)
		}
		if config.Config.Cmd != nil {
			t.Errorf("cmd = %v, want nil", config.Config.Cmd)
		}
	})

	t.Run("entrypoint with cmd keeps both", func(t *testing.T) {
		config := base()
		ImageConfig{
			Entrypoint: []string{"python"},
			Cmd:        []string{"bot.py"},
		}.apply(config)
		if !reflect.DeepEqual(config.Config.Cmd, []string{"bot.py"}) {
			t.Errorf("cmd = %v", config.Config.Cmd)
		}
	})

	t.Run("cmd alone replaces inherited cmd", func(t *testing.T) {
		config := base()
		ImageConfig{Cmd: []string{"python", "bot.py"}}.apply(config)
		if !reflect.DeepEqual(config.Config.Cmd, []string{"python", "bot.py"}) {
			t.Errorf("cmd = %v", config.Config.Cmd)
		}
		if len(config.Config.Entrypoint) != 0 {
			t.Errorf("entrypoint = %v, want empty", config.Config.Entrypoint)
		}
	})
}

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{
			Digest: digest.FromString("config"),
		},
		Layers: []ocispec.Descriptor{
			{Digest: digest.FromString("layer0")},
			{Digest: digest.FromString("layer1")},
		},
	}

	labels := manifestGCLabels(m)

	if labels["containerd.io/gc.ref.content.config"] != m.Config.Digest.String() {
		t.Fatal("config label mismatch")
	}
	for i, layer := range m.Layers {
		key := "containerd.io/gc.ref.content.l." + string(rune('0'+i))
		if labels[key] != layer.Digest.String() {
			t.Fatalf("labels[%q] = %q, want %q", key, labels[key], layer.Digest.String())
		}
	}
	if len(labels) != 3 {
		t.Fatalf("len(labels) = %d, want 3", len(labels))
	}
}

func TestIndexGCLabels(t *testing.T) {
	idx := ocispec.Index{
		Manifests: []ocispec.Descriptor{
			{Digest: digest.FromString("m0")},
			{Digest: digest.FromString("m1")},
		},
	}

	labels := indexGCLabels(idx)
	if len(labels) != 2 {
		t.Fatalf("len(labels) = %d, want 2", len(labels))
	}
	for i, m := range idx.Manifests {
		key := "containerd.io/gc.ref.content.m." + string(rune('0'+i))
		if labels[key] != m.Digest.String() {
			t.Fatalf("labels[%q] mismatch", key)
		}
	}
}
