package pkg

import (
	"math/rand"

	"github.com/google/uuid"
)

const (
	roomIDLength   = 6
	roomIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenerateRoomID returns a short shareable room code.
func GenerateRoomID() string {
	id := make([]byte, roomIDLength)
	for i := range id {
		id[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))] //nolint: gosec // it's ok
	}
	return string(id)
}

// GenerateGuestID returns a fresh identity for a visitor without a session.
func GenerateGuestID() string {
	return "guest_" + uuid.NewString()
}
