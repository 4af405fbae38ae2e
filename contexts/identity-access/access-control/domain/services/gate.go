package services

import (
	"veilian/contexts/identity-access/access-control/domain/entities"
	"veilian/contexts/identity-access/access-control/domain/valueobjects"
)

// The channel authorization gate. Pure functions over role/ban state so
// concurrent evaluation needs no locking; rules are evaluated in order and
// the first match wins.

// CanSubscribe decides read access to a channel for the given account state.
func CanSubscribe(role entities.Role, banned bool, handle string, channel valueobjects.Channel) bool {
	if banned {
		return false
	}
	switch channel.Kind {
	case valueobjects.ChannelMain, valueobjects.ChannelSocial:
		return true
	case valueobjects.ChannelModerator:
		return role.Moderates()
	case valueobjects.ChannelPrivate:
		// Moderators and supreme get subscribe-only oversight access to
		// pairs they are not part of.
		return channel.IsParticipant(handle) || role.Moderates()
	default:
		return false
	}
}

// CanPublish decides write access to a channel. Private channels accept
// writes from their two participants only; oversight access never includes
// publish, supreme included, so message authorship stays with the pair.
func CanPublish(role entities.Role, banned bool, handle string, channel valueobjects.Channel) bool {
	if banned {
		return false
	}
	switch channel.Kind {
	case valueobjects.ChannelMain, valueobjects.ChannelSocial:
		return true
	case valueobjects.ChannelModerator:
		return role.Moderates()
	case valueobjects.ChannelPrivate:
		return channel.IsParticipant(handle)
	default:
		return false
	}
}
