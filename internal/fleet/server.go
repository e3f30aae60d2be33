package fleet

import "image/color"

// Server is a fixed service point drones fly to.
type Server struct {
	Name     string
	Position Vec2
	Color    color.RGBA

	// neighbors is reserved for adjacency queries. Nothing in the
	// simulation reads it yet; Clear resets it on reload.
	neighbors []string
}

// NewServer builds a server from its load-time descriptor.
func NewServer(name string, pos Vec2, c color.Color) Server {
	r, g, b, a := c.RGBA()
	return Server{
		Name:     name,
		Position: pos,
		Color:    color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)},
	}
}

// AddNeighbor records an adjacent server by name.
func (s *Server) AddNeighbor(name string) {
	s.neighbors = append(s.neighbors, name)
}

// Neighbors returns a copy of the adjacency list.
func (s Server) Neighbors() []string {
	out := make([]string, len(s.neighbors))
	copy(out, s.neighbors)
	return out
}

func (s *Server) clear() {
	s.neighbors = nil
}
