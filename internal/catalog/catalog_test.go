package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSiteByIndexBounds(t *testing.T) {
	c := Seed()
	if got := c.SiteByIndex(1); got == nil || got.Name != "katworld" {
		t.Fatalf("expected katworld at index 1, got %v", got)
	}
	if got := c.SiteByIndex(0); got != nil {
		t.Fatalf("expected nil for index 0, got %v", got)
	}
	if got := c.SiteByIndex(len(c.Sites) + 1); got != nil {
		t.Fatalf("expected nil past the end, got %v", got)
	}
}

func TestApplyResolvedMergesKnownCategories(t *testing.T) {
	c := Seed()
	next := c.ApplyResolved(map[string]map[string]string{
		"katworld": {
			"hollywood": "https://katmoviehd.example/",
			"drama":     "https://katdrama.example/",
			"anime":     "https://pikahd.example/",
		},
	})

	kat := next.SiteByName("katworld")
	if got := kat.WorkingDomain("hollywood"); got != "https://katmoviehd.example/" {
		t.Fatalf("expected updated hollywood domain, got %q", got)
	}
	// kdrama is published under the "drama" alias by the resolver.
	if got := kat.WorkingDomain("kdrama"); got != "https://katdrama.example/" {
		t.Fatalf("expected kdrama updated via alias, got %q", got)
	}
	// Categories the catalog does not know must not appear.
	if _, ok := kat.WorkingDomains["anime"]; ok {
		t.Fatal("anime must not be added to working domains")
	}
}

func TestApplyResolvedSkipsBlankValues(t *testing.T) {
	c := Seed()
	next := c.ApplyResolved(map[string]map[string]string{
		"hdhub4u": {"main": ""},
	})
	if got := next.SiteByName("hdhub4u").WorkingDomain("main"); got != "https://hdhub4u.frl/" {
		t.Fatalf("expected previous domain to survive blank value, got %q", got)
	}
}

func TestApplyResolvedLeavesOriginalUntouched(t *testing.T) {
	c := Seed()
	_ = c.ApplyResolved(map[string]map[string]string{
		"hdhub4u": {"main": "https://hdhub4u.example/"},
	})
	if got := c.SiteByName("hdhub4u").WorkingDomain("main"); got != "https://hdhub4u.frl/" {
		t.Fatalf("expected original catalog unchanged, got %q", got)
	}
}

func TestHolderReplaceIsVisibleToReaders(t *testing.T) {
	h := NewHolder(Seed())
	h.ApplyResolved(map[string]map[string]string{
		"hdhub4u": {"main": "https://hdhub4u.example/"},
	})
	if got := h.Current().SiteByName("hdhub4u").WorkingDomain("main"); got != "https://hdhub4u.example/" {
		t.Fatalf("expected swapped catalog, got %q", got)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.json")
	store := NewFileStore(path)
	ctx := context.Background()

	record := Resolved{
		"katworld": {"hollywood": "https://katmoviehd.example/", "drama": ""},
		"hdhub4u":  {"main": "https://hdhub4u.example/"},
	}
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got["katworld"]["hollywood"] != "https://katmoviehd.example/" {
		t.Fatalf("unexpected record: %v", got)
	}
	if got["hdhub4u"]["main"] != "https://hdhub4u.example/" {
		t.Fatalf("unexpected record: %v", got)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty record, got %v", got)
	}
}
