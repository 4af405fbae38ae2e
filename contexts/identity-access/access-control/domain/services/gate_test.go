package services

import (
	"testing"

	"veilian/contexts/identity-access/access-control/domain/entities"
	"veilian/contexts/identity-access/access-control/domain/valueobjects"
)

func mustPrivate(t *testing.T, a string, b string) valueobjects.Channel {
	t.Helper()
	channel, err := valueobjects.Private(a, b)
	if err != nil {
		t.Fatalf("private channel %s/%s: %v", a, b, err)
	}
	return channel
}

func TestBannedAccountDeniedEverywhere(t *testing.T) {
	channels := []valueobjects.Channel{
		valueobjects.Main(),
		valueobjects.Moderator(),
		valueobjects.Social(),
		mustPrivate(t, "alice", "bob"),
	}
	roles := []entities.Role{entities.RoleMember, entities.RoleModerator, entities.RoleSupreme}
	for _, role := range roles {
		for _, channel := range channels {
			if CanSubscribe(role, true, "alice", channel) {
				t.Fatalf("banned %s subscribed to %s", role, channel.Key())
			}
			if CanPublish(role, true, "alice", channel) {
				t.Fatalf("banned %s published to %s", role, channel.Key())
			}
		}
	}
}

func TestSharedChannelsOpenToMembers(t *testing.T) {
	for _, channel := range []valueobjects.Channel{valueobjects.Main(), valueobjects.Social()} {
		if !CanSubscribe(entities.RoleMember, false, "alice", channel) {
			t.Fatalf("member denied subscribe on %s", channel.Key())
		}
		if !CanPublish(entities.RoleMember, false, "alice", channel) {
			t.Fatalf("member denied publish on %s", channel.Key())
		}
	}
}

func TestModeratorChannelRequiresModerationRole(t *testing.T) {
	channel := valueobjects.Moderator()
	if CanSubscribe(entities.RoleMember, false, "alice", channel) {
		t.Fatal("member subscribed to moderator channel")
	}
	if CanPublish(entities.RoleMember, false, "alice", channel) {
		t.Fatal("member published to moderator channel")
	}
	for _, role := range []entities.Role{entities.RoleModerator, entities.RoleSupreme} {
		if !CanSubscribe(role, false, "alice", channel) {
			t.Fatalf("%s denied subscribe on moderator channel", role)
		}
		if !CanPublish(role, false, "alice", channel) {
			t.Fatalf("%s denied publish on moderator channel", role)
		}
	}
}

func TestPrivateChannelParticipantsReadAndWrite(t *testing.T) {
	channel := mustPrivate(t, "alice", "bob")
	for _, handle := range []string{"alice", "bob"} {
		if !CanSubscribe(entities.RoleMember, false, handle, channel) {
			t.Fatalf("participant %s denied subscribe", handle)
		}
		if !CanPublish(entities.RoleMember, false, handle, channel) {
			t.Fatalf("participant %s denied publish", handle)
		}
	}
	if CanSubscribe(entities.RoleMember, false, "carol", channel) {
		t.Fatal("outsider member subscribed to private pair")
	}
	if CanPublish(entities.RoleMember, false, "carol", channel) {
		t.Fatal("outsider member published to private pair")
	}
}

func TestModeratorOversightIsSubscribeOnly(t *testing.T) {
	channel := mustPrivate(t, "alice", "bob")
	for _, role := range []entities.Role{entities.RoleModerator, entities.RoleSupreme} {
		if !CanSubscribe(role, false, "overseer", channel) {
			t.Fatalf("%s denied oversight subscribe on foreign pair", role)
		}
		if CanPublish(role, false, "overseer", channel) {
			t.Fatalf("%s published into a foreign private pair", role)
		}
	}
}

func TestPublishImpliesSubscribe(t *testing.T) {
	channels := []valueobjects.Channel{
		valueobjects.Main(),
		valueobjects.Moderator(),
		valueobjects.Social(),
		mustPrivate(t, "alice", "bob"),
	}
	roles := []entities.Role{entities.RoleMember, entities.RoleModerator, entities.RoleSupreme}
	handles := []string{"alice", "bob", "carol"}
	for _, role := range roles {
		for _, banned := range []bool{false, true} {
			for _, handle := range handles {
				for _, channel := range channels {
					if CanPublish(role, banned, handle, channel) && !CanSubscribe(role, banned, handle, channel) {
						t.Fatalf("publish allowed without subscribe: role=%s banned=%v handle=%s channel=%s",
							role, banned, handle, channel.Key())
					}
				}
			}
		}
	}
}
