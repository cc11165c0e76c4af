package catalog

import "testing"

func TestLookupFiltersByKind(t *testing.T) {
	entries := Lookup(KindLooksRareTakerBid)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}
	if entries[0].Kind != KindLooksRareTakerBid || entries[0].Protocol != ProtocolLooksRare {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}

	if len(Lookup()) == 0 {
		t.Fatalf("full catalog must not be empty")
	}
}

func TestTopicsDeduplicated(t *testing.T) {
	topics := Topics()
	seen := make(map[string]bool, len(topics))
	for _, topic := range topics {
		if seen[topic.Hex()] {
			t.Fatalf("duplicate topic in filter: %s", topic.Hex())
		}
		seen[topic.Hex()] = true
	}

	// Seaport v1.1 and v1.4 share event signatures, so the filter must be
	// strictly smaller than the catalog.
	if len(topics) >= len(Lookup()) {
		t.Fatalf("expected fewer topics (%d) than entries (%d)", len(topics), len(Lookup()))
	}
}

func TestEveryProtocolHasEntries(t *testing.T) {
	counts := make(map[Protocol]int)
	for _, entry := range Lookup() {
		counts[entry.Protocol]++
	}
	for _, protocol := range Protocols {
		if counts[protocol] == 0 {
			t.Fatalf("protocol %s has no catalog entries", protocol)
		}
	}
}
