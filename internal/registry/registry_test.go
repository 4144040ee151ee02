package registry

import (
	"errors"
	"testing"

	"github.com/mkarren/toolgate/internal/models"
)

func testServer(name string, priority int) models.ServerConfig {
	return models.ServerConfig{
		Name:           name,
		Address:        "http://localhost:9000/" + name,
		Enabled:        true,
		TimeoutSeconds: 30,
		Priority:       priority,
	}
}

func TestRegistry_AddDuplicate(t *testing.T) {
	reg := New()

	if err := reg.Add(testServer("alpha", 1)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	err := reg.Add(testServer("alpha", 2))
	if !errors.Is(err, ErrDuplicateServer) {
		t.Fatalf("expected ErrDuplicateServer, got %v", err)
	}
}

func TestRegistry_RemoveUnknown(t *testing.T) {
	reg := New()

	if err := reg.Remove("ghost"); !errors.Is(err, ErrUnknownServer) {
		t.Fatalf("expected ErrUnknownServer, got %v", err)
	}

	if err := reg.Add(testServer("alpha", 1)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := reg.Remove("alpha"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d servers", reg.Count())
	}
}

func TestRegistry_AddValidation(t *testing.T) {
	reg := New()

	if err := reg.Add(models.ServerConfig{Name: "", TimeoutSeconds: 30}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := reg.Add(models.ServerConfig{Name: "x", TimeoutSeconds: 0}); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
}

func TestRegistry_ListOrdering(t *testing.T) {
	reg := New()

	// Registered in priority-scrambled order; "beta" and "gamma" tie on
	// priority, so registration order decides.
	for _, s := range []models.ServerConfig{
		testServer("beta", 5),
		testServer("alpha", 1),
		testServer("gamma", 5),
		testServer("delta", 3),
	} {
		if err := reg.Add(s); err != nil {
			t.Fatalf("Add(%s) error = %v", s.Name, err)
		}
	}

	got := reg.List("")
	want := []string{"alpha", "delta", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d servers, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("List()[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestRegistry_ListFilterTag(t *testing.T) {
	reg := New()

	tagged := testServer("tagged", 1)
	tagged.Tags = []string{"search", "web"}
	plain := testServer("plain", 2)

	if err := reg.Add(tagged); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := reg.Add(plain); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got := reg.List("web")
	if len(got) != 1 || got[0].Name != "tagged" {
		t.Fatalf("List(web) = %v, want only tagged", got)
	}
}

func TestRegistry_SetEnabled(t *testing.T) {
	reg := New()
	if err := reg.Add(testServer("alpha", 1)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := reg.SetEnabled("alpha", false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if got, _ := reg.Get("alpha"); got.Enabled {
		t.Error("server should be disabled")
	}
	if len(reg.Enabled()) != 0 {
		t.Error("Enabled() should exclude disabled servers")
	}

	if err := reg.SetEnabled("ghost", true); !errors.Is(err, ErrUnknownServer) {
		t.Fatalf("expected ErrUnknownServer, got %v", err)
	}
}

func TestRegistry_ReturnsDeepCopies(t *testing.T) {
	reg := New()
	cfg := testServer("copy-test", 1)
	cfg.Tags = []string{"t1"}
	cfg.Metadata = map[string]string{"k": "v"}
	if err := reg.Add(cfg); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, ok := reg.Get("copy-test")
	if !ok {
		t.Fatal("Get() should find registered server")
	}
	got.Tags[0] = "mutated"
	got.Metadata["k"] = "mutated"

	again, _ := reg.Get("copy-test")
	if again.Tags[0] != "t1" || again.Metadata["k"] != "v" {
		t.Fatal("registry state should not be affected by mutations of returned copies")
	}
}
