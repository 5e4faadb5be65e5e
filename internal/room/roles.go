package room

import (
	"crypto/subtle"

	"swapchess/internal/game"
)

// assignRole gives the first free color, falling back to spectator.
func assignRole(s *Session, seat *Seat) Role {
	for _, c := range []game.Color{game.White, game.Black} {
		if s.Players[c] == nil {
			s.Players[c] = seat
			return Role(c)
		}
	}
	s.Spectators = append(s.Spectators, seat)
	return RoleSpectator
}

func seatByToken(s *Session, token string) (game.Color, *Seat, bool) {
	if token == "" {
		return "", nil, false
	}
	for _, c := range []game.Color{game.White, game.Black} {
		p := s.Players[c]
		if p != nil && subtle.ConstantTimeCompare([]byte(p.token), []byte(token)) == 1 {
			return c, p, true
		}
	}
	return "", nil, false
}
