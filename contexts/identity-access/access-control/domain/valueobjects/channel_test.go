package valueobjects

import "testing"

func TestPrivatePairCanonicalOrder(t *testing.T) {
	forward, err := Private("zoe", "adam")
	if err != nil {
		t.Fatalf("private: %v", err)
	}
	reverse, err := Private("adam", "zoe")
	if err != nil {
		t.Fatalf("private reversed: %v", err)
	}
	if forward.Key() != reverse.Key() {
		t.Fatalf("pair order changed the key: %s vs %s", forward.Key(), reverse.Key())
	}
	if forward.Key() != "private:adam:zoe" {
		t.Fatalf("unexpected canonical key %s", forward.Key())
	}
}

func TestPrivateRejectsDegeneratePairs(t *testing.T) {
	cases := [][2]string{
		{"", "bob"},
		{"alice", ""},
		{"alice", "alice"},
		{"ali:ce", "bob"},
		{"alice", "b:ob"},
	}
	for _, pair := range cases {
		if _, err := Private(pair[0], pair[1]); err == nil {
			t.Fatalf("expected error for pair %q/%q", pair[0], pair[1])
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	keys := []string{"main", "moderator", "social", "private:adam:zoe"}
	for _, key := range keys {
		channel, err := Parse(key)
		if err != nil {
			t.Fatalf("parse %s: %v", key, err)
		}
		if channel.Key() != key {
			t.Fatalf("round trip changed %s to %s", key, channel.Key())
		}
	}
}

func TestParseNormalizesPairOrder(t *testing.T) {
	channel, err := Parse("private:zoe:adam")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if channel.Key() != "private:adam:zoe" {
		t.Fatalf("expected normalized key, got %s", channel.Key())
	}
}

func TestParseRejectsUnknownChannels(t *testing.T) {
	for _, key := range []string{"", "lobby", "private:alice", "private:a:b:c"} {
		if _, err := Parse(key); err == nil {
			t.Fatalf("expected error for %q", key)
		}
	}
}

func TestIsParticipant(t *testing.T) {
	channel, err := Private("alice", "bob")
	if err != nil {
		t.Fatalf("private: %v", err)
	}
	if !channel.IsParticipant("alice") || !channel.IsParticipant("bob") {
		t.Fatal("participants not recognized")
	}
	if channel.IsParticipant("carol") {
		t.Fatal("outsider recognized as participant")
	}
	if Main().IsParticipant("alice") {
		t.Fatal("shared channel reported a participant")
	}
}
