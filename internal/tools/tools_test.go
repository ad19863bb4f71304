package tools

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/dropdawn/dropdawn/internal/hosting"
	"github.com/dropdawn/dropdawn/internal/log"
	"github.com/dropdawn/dropdawn/internal/site"
)

func newTestKit(t *testing.T, opts ...Option) *Kit {
	t.Helper()

	logger := log.NewNop()
	client := hosting.NewClient("test-token", logger)
	ops := site.New("test-token", client, hosting.NewPoller(client), logger)

	k, err := NewKit(KitConfig{Sites: ops, SearchAPIKey: "test-key", Logger: logger}, opts...)
	if err != nil {
		t.Fatalf("NewKit() error = %v", err)
	}
	return k
}

func testToolContext(t *testing.T) *ai.ToolContext {
	t.Helper()
	return &ai.ToolContext{Context: context.Background()}
}

func TestNewKitRequiresSites(t *testing.T) {
	if _, err := NewKit(KitConfig{}); err == nil {
		t.Fatal("NewKit() expected error for missing site operations")
	}
}

func TestNamesMatchesCatalog(t *testing.T) {
	catalog, err := Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(catalog) != len(Names()) {
		t.Fatalf("Catalog() returned %d descriptors, want %d", len(catalog), len(Names()))
	}

	for i, name := range Names() {
		d := catalog[i]
		if d.Name != name {
			t.Errorf("catalog[%d].Name = %q, want %q", i, d.Name, name)
		}
		if d.Description == "" {
			t.Errorf("catalog entry %q has no description", name)
		}
		if d.InputSchema == nil {
			t.Errorf("catalog entry %q has no input schema", name)
		}
	}
}
